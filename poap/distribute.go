package poap

import (
	"context"
	"log/slog"

	"github.com/algopoap/poap-service/interfaces"
)

// Recipient is one entry in a batch distribution.
type Recipient struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// EventInfo holds the shared certificate fields for a batch.
type EventInfo struct {
	Event     string `json:"event"`
	Organizer string `json:"organizer"`
	Date      string `json:"date"`
}

// BatchResult summarizes a distribution run.
type BatchResult struct {
	Total      int              `json:"total"`
	Delivered  int              `json:"delivered"`
	MintedOnly int              `json:"minted_only"`
	Failed     int              `json:"failed"`
	Results    []DeliveryResult `json:"results"`
}

// Distribute mints and delivers one token per recipient, sequentially.
// Each recipient gets a distinct certificate carrying their name and
// address, so every token has a unique digest even within one event.
//
// A failing recipient does not stop the batch. The only returned error is
// context cancellation; everything else is reported per recipient.
func (m *Minter) Distribute(ctx context.Context, event EventInfo, recipients []Recipient) (BatchResult, error) {
	result := BatchResult{
		Total:   len(recipients),
		Results: make([]DeliveryResult, 0, len(recipients)),
	}

	m.log.Info("Starting distribution",
		slog.String("event", event.Event),
		slog.Int("recipients", len(recipients)))

	for i, recipient := range recipients {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		cert := interfaces.Certificate{
			Event:            event.Event,
			Organizer:        event.Organizer,
			Date:             event.Date,
			RecipientName:    recipient.Name,
			RecipientAddress: recipient.Address,
		}

		delivery, err := m.mintAndDeliver(ctx, cert, i+1)
		if err != nil {
			m.log.Warn("Distribution entry failed",
				slog.String("recipient", recipient.Address),
				"err", err)
		}
		result.Results = append(result.Results, delivery)

		switch delivery.Status {
		case StatusDelivered:
			result.Delivered++
		case StatusMintedOnly:
			result.MintedOnly++
		default:
			result.Failed++
		}
	}

	m.log.Info("Distribution finished",
		slog.String("event", event.Event),
		slog.Int("delivered", result.Delivered),
		slog.Int("minted_only", result.MintedOnly),
		slog.Int("failed", result.Failed))

	return result, nil
}
