package httpserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/metrics"
	"github.com/algopoap/poap-service/notify"
	"github.com/algopoap/poap-service/poap"
	"github.com/algopoap/poap-service/verifier"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes API requests. It wires the mint workflow, the
// verifier, the certificate extractor, the on-chain registry and the
// notification mailer behind the HTTP surface.
type Handler struct {
	minter    *poap.Minter
	verifier  *verifier.Verifier
	extractor *poap.Extractor
	registry  interfaces.CertificateRegistry
	mailer    *notify.Mailer
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewHandler creates a handler. mailer and metrics may be nil; registry may
// be nil when the service runs without a deployed registry application.
func NewHandler(minter *poap.Minter, v *verifier.Verifier, extractor *poap.Extractor, registry interfaces.CertificateRegistry, mailer *notify.Mailer, m *metrics.Metrics, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		minter:    minter,
		verifier:  v,
		extractor: extractor,
		registry:  registry,
		mailer:    mailer,
		metrics:   m,
		log:       log,
	}
}

// MintRequest is the payload for POST /api/mint.
type MintRequest struct {
	Event            string `json:"event"`
	Organizer        string `json:"organizer"`
	Date             string `json:"date"`
	RecipientName    string `json:"recipient_name"`
	RecipientAddress string `json:"recipient_address"`
	Email            string `json:"email,omitempty"`
}

// MintResponse reports the delivery outcome plus the notification status.
type MintResponse struct {
	poap.DeliveryResult
	EmailSent  bool   `json:"email_sent"`
	EmailError string `json:"email_error,omitempty"`
}

// HandleMint mints and delivers a token for one recipient.
//
// A mint that succeeds but cannot be delivered or announced is still a 200:
// the asset exists and the response carries the partial outcome.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Event == "" || req.RecipientAddress == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("event and recipient_address are required"))
		return
	}

	cert := interfaces.Certificate{
		Event:            req.Event,
		Organizer:        req.Organizer,
		Date:             req.Date,
		RecipientName:    req.RecipientName,
		RecipientAddress: req.RecipientAddress,
	}

	result, err := h.minter.MintAndDeliver(r.Context(), cert)
	h.countMint(result.Status)
	if err != nil {
		status := http.StatusInternalServerError
		if result.Mint == nil && result.Reason != "" {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, err)
		return
	}

	resp := MintResponse{DeliveryResult: result}
	if req.Email != "" && result.Mint != nil {
		resp.EmailSent, resp.EmailError = h.notifyMinted(r.Context(), req.Email, cert.Event, result)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) notifyMinted(ctx context.Context, email, event string, result poap.DeliveryResult) (bool, string) {
	if h.mailer == nil || !h.mailer.Enabled() {
		return false, ""
	}

	err := h.mailer.SendMinted(ctx, notify.Notification{
		Recipient: email,
		Event:     event,
		AssetID:   result.Mint.AssetID,
		TxID:      result.Mint.TxID,
	})
	if err != nil {
		h.countNotification("error")
		h.log.Warn("Mint notification failed", slog.String("email", email), "err", err)
		return false, err.Error()
	}
	h.countNotification("sent")
	return true, ""
}

// VerifyMultipleRequest is the payload for POST /api/verify-multiple.
type VerifyMultipleRequest struct {
	AssetIDs []uint64 `json:"asset_ids"`
}

// HandleVerify returns the verification report for one asset.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifier.Request
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.AssetID == 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("asset_id is required"))
		return
	}

	report, err := h.verifier.Verify(r.Context(), req)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	h.countVerification(report)

	h.writeJSON(w, http.StatusOK, report)
}

// HandleVerifyMultiple returns reports for a list of assets.
func (h *Handler) HandleVerifyMultiple(w http.ResponseWriter, r *http.Request) {
	var req VerifyMultipleRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.AssetIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, errors.New("asset_ids is required"))
		return
	}

	reports, err := h.verifier.VerifyMultiple(r.Context(), req.AssetIDs)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}
	for _, report := range reports {
		h.countVerification(report)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// HandleCertificate extracts certificate details from a minted asset.
//
// URL format: GET /api/certificate/{asset_id}
func (h *Handler) HandleCertificate(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.ParseUint(chi.URLParam(r, "asset_id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid asset id: %w", err))
		return
	}

	details, err := h.extractor.CertificateDetails(r.Context(), assetID)
	if errors.Is(err, interfaces.ErrAssetNotFound) {
		h.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err)
		return
	}

	h.writeJSON(w, http.StatusOK, details)
}

// RegisterRequest is the payload for POST /api/registry/register. Either
// the precomputed hash or the full certificate fields may be supplied.
type RegisterRequest struct {
	CertificateHash string                  `json:"certificate_hash,omitempty"`
	Certificate     *interfaces.Certificate `json:"certificate,omitempty"`
}

// TransferRequest is the payload for POST /api/registry/transfer.
type TransferRequest struct {
	CertificateHash string `json:"certificate_hash"`
	NewOwner        string `json:"new_owner"`
}

// HandleRegister registers a certificate hash to the service account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("registry not configured"))
		return
	}

	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	hash, err := h.certificateHash(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.registry.Register(r.Context(), hash); err != nil {
		h.countRegistry("register", "error")
		h.writeRegistryError(w, err)
		return
	}
	h.countRegistry("register", "ok")

	h.writeJSON(w, http.StatusOK, map[string]string{
		"certificate_hash": hash.String(),
		"status":           "registered",
	})
}

// HandleOwner returns the registered owner of a certificate.
//
// URL format: GET /api/registry/owner/{cert_hash}
func (h *Handler) HandleOwner(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("registry not configured"))
		return
	}

	hash, err := interfaces.NewCertificateHashFromHex(chi.URLParam(r, "cert_hash"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	owner, err := h.registry.Verify(r.Context(), hash)
	if err != nil {
		h.countRegistry("verify", "error")
		h.writeRegistryError(w, err)
		return
	}
	h.countRegistry("verify", "ok")

	h.writeJSON(w, http.StatusOK, map[string]any{
		"certificate_hash": hash.String(),
		"registered":       !owner.IsAbsent(),
		"owner":            owner.String(),
	})
}

// HandleTransfer reassigns a certificate to a new owner.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("registry not configured"))
		return
	}

	var req TransferRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	hash, err := interfaces.NewCertificateHashFromHex(req.CertificateHash)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.NewOwner == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("new_owner is required"))
		return
	}
	newOwner, err := hex.DecodeString(req.NewOwner)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid new_owner: %w", err))
		return
	}

	if err := h.registry.Transfer(r.Context(), hash, newOwner); err != nil {
		h.countRegistry("transfer", "error")
		h.writeRegistryError(w, err)
		return
	}
	h.countRegistry("transfer", "ok")

	h.writeJSON(w, http.StatusOK, map[string]string{
		"certificate_hash": hash.String(),
		"status":           "transferred",
	})
}

func (h *Handler) certificateHash(req RegisterRequest) (interfaces.CertificateHash, error) {
	switch {
	case req.CertificateHash != "":
		return interfaces.NewCertificateHashFromHex(req.CertificateHash)
	case req.Certificate != nil:
		return req.Certificate.Hash(), nil
	default:
		return interfaces.CertificateHash{}, errors.New("certificate_hash or certificate is required")
	}
}

// writeRegistryError maps registry domain errors to status codes.
func (h *Handler) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrAlreadyRegistered):
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, interfaces.ErrNotRegistered):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, interfaces.ErrNotOwner):
		h.writeError(w, http.StatusForbidden, err)
	case errors.Is(err, interfaces.ErrNoSigner):
		h.writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.writeError(w, http.StatusBadGateway, err)
	}
}

func (h *Handler) decode(r *http.Request, into any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) countMint(status poap.DeliveryStatus) {
	if h.metrics != nil {
		h.metrics.MintsTotal.WithLabelValues(string(status)).Inc()
	}
}

func (h *Handler) countVerification(report verifier.Report) {
	if h.metrics == nil {
		return
	}
	outcome := "invalid"
	switch {
	case !report.Exists:
		outcome = "missing"
	case report.OverallValid:
		outcome = "valid"
	}
	h.metrics.VerificationsTotal.WithLabelValues(outcome).Inc()
}

func (h *Handler) countRegistry(operation, result string) {
	if h.metrics != nil {
		h.metrics.RegistryCallsTotal.WithLabelValues(operation, result).Inc()
	}
}

func (h *Handler) countNotification(result string) {
	if h.metrics != nil {
		h.metrics.NotificationsTotal.WithLabelValues(result).Inc()
	}
}
