package poap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algopoap/poap-service/interfaces"
)

// DeliveryStatus reports how far a mint-and-deliver got.
type DeliveryStatus string

const (
	// StatusDelivered means the token was minted and transferred to the
	// recipient.
	StatusDelivered DeliveryStatus = "delivered"

	// StatusMintedOnly means the token exists but stayed with the creator,
	// usually because the recipient has not opted in yet.
	StatusMintedOnly DeliveryStatus = "minted"

	// StatusFailed means no token was created for the recipient.
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryResult reports the outcome for one recipient. Mint is set
// whenever an asset was created, including partial outcomes where the
// transfer did not go through.
type DeliveryResult struct {
	RecipientName    string         `json:"recipient_name,omitempty"`
	RecipientAddress string         `json:"recipient_address"`
	Status           DeliveryStatus `json:"status"`
	Mint             *MintResult    `json:"mint,omitempty"`
	TransferTxID     string         `json:"transfer_txid,omitempty"`
	Reason           string         `json:"reason,omitempty"`
}

// MintAndDeliver mints the token for cert and transfers it to the
// certificate's recipient address.
//
// The returned error is non-nil only when nothing was minted. Once the
// asset exists, delivery problems degrade the result to StatusMintedOnly
// with the reason recorded, since the mint itself cannot be undone.
func (m *Minter) MintAndDeliver(ctx context.Context, cert interfaces.Certificate) (DeliveryResult, error) {
	return m.mintAndDeliver(ctx, cert, 0)
}

func (m *Minter) mintAndDeliver(ctx context.Context, cert interfaces.Certificate, recipientNumber int) (DeliveryResult, error) {
	result := DeliveryResult{
		RecipientName:    cert.RecipientName,
		RecipientAddress: cert.RecipientAddress,
		Status:           StatusFailed,
	}

	if err := m.checkRecipient(ctx, cert.RecipientAddress); err != nil {
		result.Reason = err.Error()
		return result, err
	}

	mint, err := m.mint(ctx, cert, recipientNumber)
	if err != nil {
		result.Reason = err.Error()
		return result, err
	}
	result.Mint = mint
	result.Status = StatusMintedOnly

	// Opt-in can only happen after the asset exists, so re-read the
	// account here rather than reusing the pre-mint snapshot.
	optedIn, err := m.OptedIn(ctx, cert.RecipientAddress, mint.AssetID)
	if err != nil {
		result.Reason = err.Error()
		return result, nil
	}
	if !optedIn {
		result.Reason = interfaces.ErrNotOptedIn.Error()
		m.log.Info("Token minted but not delivered",
			slog.Uint64("asset_id", mint.AssetID),
			slog.String("recipient", cert.RecipientAddress),
			slog.String("reason", result.Reason))
		return result, nil
	}

	txid, err := m.deliver(ctx, cert.RecipientAddress, mint.AssetID)
	if err != nil {
		result.Reason = err.Error()
		m.log.Warn("Token minted but transfer failed",
			slog.Uint64("asset_id", mint.AssetID),
			slog.String("recipient", cert.RecipientAddress),
			"err", err)
		return result, nil
	}

	result.Status = StatusDelivered
	result.TransferTxID = txid
	result.Reason = ""

	m.log.Info("Token delivered",
		slog.Uint64("asset_id", mint.AssetID),
		slog.String("recipient", cert.RecipientAddress),
		slog.String("transfer_txid", txid))

	return result, nil
}

// checkRecipient validates the address and confirms the account exists
// with enough balance to hold an asset.
func (m *Minter) checkRecipient(ctx context.Context, address string) error {
	if _, err := types.DecodeAddress(address); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	account, err := m.algod.AccountInformation(ctx, address)
	if err != nil {
		return fmt.Errorf("recipient account not found: %w", err)
	}

	if account.Amount < MinRecipientBalance {
		return fmt.Errorf("recipient balance %d below minimum %d microalgos", account.Amount, MinRecipientBalance)
	}

	return nil
}

// holdsAsset reports whether the account holds (or has opted in to) the
// asset. A zero-balance holding counts as an opt-in.
func holdsAsset(account models.Account, assetID uint64) bool {
	for _, holding := range account.Assets {
		if holding.AssetId == assetID {
			return true
		}
	}
	return false
}

// OptedIn reports whether address currently holds (or has opted in to) the
// asset.
func (m *Minter) OptedIn(ctx context.Context, address string, assetID uint64) (bool, error) {
	account, err := m.algod.AccountInformation(ctx, address)
	if err != nil {
		return false, fmt.Errorf("account lookup failed: %w", err)
	}
	return holdsAsset(account, assetID), nil
}

// deliver transfers the single minted unit to the recipient.
func (m *Minter) deliver(ctx context.Context, recipient string, assetID uint64) (string, error) {
	sp, err := m.algod.SuggestedParams(ctx)
	if err != nil {
		return "", fmt.Errorf("could not fetch suggested params: %w", err)
	}

	tx, err := transaction.MakeAssetTransferTxn(
		m.signer.Address().String(), recipient, TokenTotal, nil, sp, "", assetID)
	if err != nil {
		return "", fmt.Errorf("could not build asset transfer: %w", err)
	}

	txid, _, err := m.submit(ctx, tx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		return "", err
	}
	return txid, nil
}
