// Package notify sends best-effort email notifications about minted
// tokens. A failed notification is reported to the caller but never rolls
// back or fails the mint itself.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// DefaultExplorerURL prefixes asset links in notification mails.
const DefaultExplorerURL = "https://testnet.explorer.perawallet.app/asset/"

// Config holds SMTP connection settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// ExplorerURL overrides the asset link prefix.
	ExplorerURL string
}

// Notification describes one minted token.
type Notification struct {
	Recipient string
	Event     string
	AssetID   uint64
	TxID      string
}

// Mailer sends mint notifications over SMTP with mandatory STARTTLS.
type Mailer struct {
	cfg    Config
	client *mail.Client
	log    *slog.Logger
}

// New creates a mailer. With an empty host the mailer is a no-op that
// reports every notification as skipped.
func New(cfg Config, log *slog.Logger) (*Mailer, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ExplorerURL == "" {
		cfg.ExplorerURL = DefaultExplorerURL
	}

	m := &Mailer{cfg: cfg, log: log}
	if cfg.Host == "" {
		return m, nil
	}

	opts := []mail.Option{
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port != 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create mail client: %w", err)
	}
	m.client = client
	return m, nil
}

// Enabled reports whether the mailer has an SMTP host configured.
func (m *Mailer) Enabled() bool {
	return m.client != nil
}

// SendMinted emails the recipient about their minted token. Returns an
// error for the caller to report; the token is already on the ledger either
// way.
func (m *Mailer) SendMinted(ctx context.Context, n Notification) error {
	if !m.Enabled() {
		m.log.Debug("Mail disabled, skipping notification",
			slog.String("recipient", n.Recipient))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.Recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(Subject(n))
	msg.SetBodyString(mail.TypeTextPlain, Body(n, m.cfg.ExplorerURL))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("could not send notification: %w", err)
	}

	m.log.Info("Sent mint notification",
		slog.String("recipient", n.Recipient),
		slog.Uint64("asset_id", n.AssetID))
	return nil
}

// Subject builds the notification subject line.
func Subject(n Notification) string {
	return fmt.Sprintf("Your attendance token for %s has been minted", n.Event)
}

// Body builds the plain-text notification body.
func Body(n Notification, explorerURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your attendance token for %s has been minted.\n\n", n.Event)
	fmt.Fprintf(&b, "Asset ID: %d\n", n.AssetID)
	fmt.Fprintf(&b, "Transaction: %s\n", n.TxID)
	fmt.Fprintf(&b, "View it on the explorer: %s%d\n", explorerURL, n.AssetID)
	return b.String()
}
