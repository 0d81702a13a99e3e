package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"aa-consent-gateway/internal/middleware"
	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/pkg/logger"
)

// ConsentService is the orchestration the consent routes drive
type ConsentService interface {
	GenerateConsent(ctx context.Context, req *model.ConsentGenerateRequest) (*model.ConsentGenerateResponse, error)
	VerifyConsent(ctx context.Context, req *model.ConsentVerifyRequest) (*model.ConsentVerifyResponse, error)
}

// ConsentHandler handles consent generation and verification requests
type ConsentHandler struct {
	consentService ConsentService
	logger         *logger.Logger
}

// NewConsentHandler creates a new consent handler
func NewConsentHandler(svc ConsentService, log *logger.Logger) *ConsentHandler {
	return &ConsentHandler{
		consentService: svc,
		logger:         log,
	}
}

// GenerateConsent handles POST /consent/generate
func (h *ConsentHandler) GenerateConsent(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), h.logger)

	var req model.ConsentGenerateRequest
	if err := decodeBody(r, &req); err != nil {
		log.Warn("Invalid generate request body", "error", err)
		h.sendDecodeError(w, err)
		return
	}

	if req.CustID == "" {
		log.Warn("Bad request - missing custId")
		sendErrorResponse(w, "ERR_MISSING_PARAMETER", "custId is required", http.StatusBadRequest)
		return
	}

	log.WithCustID(req.CustID).Info("Incoming consent generate request", "template", req.TemplateName)

	// Outbound AA calls run to completion even if the caller goes away.
	resp, err := h.consentService.GenerateConsent(context.WithoutCancel(r.Context()), &req)
	if err != nil {
		log.Error("Generate consent handler failed", "error", err)
		h.sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, resp)
}

// VerifyConsent handles POST /consent/verify. The session key is read from
// the body's transactionId, else from the transaction_id query parameter.
func (h *ConsentHandler) VerifyConsent(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), h.logger)

	var req model.ConsentVerifyRequest
	if err := decodeBody(r, &req); err != nil {
		log.Warn("Invalid verify request body", "error", err)
		h.sendDecodeError(w, err)
		return
	}
	if req.TransactionID == "" {
		req.TransactionID = r.URL.Query().Get("transaction_id")
	}

	log.Info("Incoming consent verify request",
		"transaction_id", req.TransactionID,
		"has_user_id", req.UserID != "",
		"consent_handles", len(req.ConsentHandles),
	)

	resp, err := h.consentService.VerifyConsent(context.WithoutCancel(r.Context()), &req)
	if err != nil {
		log.Error("Verify consent handler failed", "error", err)
		h.sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, resp)
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *ConsentHandler) sendDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		sendErrorResponse(w, "ERR_BODY_TOO_LARGE", "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	sendErrorResponse(w, "ERR_INVALID_JSON", "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
}

func (h *ConsentHandler) sendServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, model.ErrValidation) {
		status = http.StatusBadRequest
	}
	sendErrorResponse(w, mapErrorCode(err), err.Error(), status)
}

// mapErrorCode maps error to error code
func mapErrorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return "ERR_VALIDATION"
	case errors.Is(err, model.ErrAuthentication):
		return "ERR_AA_LOGIN_FAILED"
	case errors.Is(err, model.ErrDownstream):
		return "ERR_AA_REQUEST_FAILED"
	case errors.Is(err, model.ErrStoreUnavailable):
		return "ERR_SESSION_STORE_UNAVAILABLE"
	default:
		return "ERR_INTERNAL_SERVER"
	}
}
