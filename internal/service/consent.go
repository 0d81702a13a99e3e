package service

import (
	"context"
	"fmt"

	"aa-consent-gateway/internal/config"
	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/pkg/logger"
)

const (
	// DefaultGenerateRedirectURL is used when a generate call has no redirectUrl
	DefaultGenerateRedirectURL = "https://google.co.in"
	// userSessionID is the fixed session marker sent on ConsentRequestPlus
	userSessionID = "sessionid123"
)

// ConsentService orchestrates consent generation and verification
type ConsentService struct {
	client   *AAClient
	auth     *Authenticator
	sessions *SessionResolver
	config   *config.FinvuConfig
	logger   *logger.Logger
}

// NewConsentService creates a new consent service
func NewConsentService(client *AAClient, auth *Authenticator, sessions *SessionResolver, cfg *config.FinvuConfig, log *logger.Logger) *ConsentService {
	return &ConsentService{
		client:   client,
		auth:     auth,
		sessions: sessions,
		config:   cfg,
		logger:   log,
	}
}

// GenerateConsent requests a new consent handle for req.CustID
func (s *ConsentService) GenerateConsent(ctx context.Context, req *model.ConsentGenerateRequest) (*model.ConsentGenerateResponse, error) {
	if req.CustID == "" {
		return nil, fmt.Errorf("%w: custId is required", model.ErrValidation)
	}
	log := s.logger.WithCustID(req.CustID)

	token, err := s.auth.Login(ctx)
	if err != nil {
		return nil, &model.DownstreamError{Op: "generate consent handler", Err: err}
	}

	body := s.consentRequestBody(req)

	log.Info("Generating consent handler", "template", body.TemplateName)

	result, err := call[model.ConsentRequestPlusBody, model.ConsentRequestPlusResult](ctx, s.client, opConsentRequest, pathConsentRequest, token, body)
	if err != nil {
		log.Error("Failed to generate consent handler", "error", err)
		return nil, &model.DownstreamError{Op: "generate consent handler", Err: err}
	}

	resp := &model.ConsentGenerateResponse{
		ConsentHandler:   result.ConsentHandle,
		EncryptedRequest: result.EncryptedRequest,
		RequestDate:      result.RequestDate,
		EncryptedFiuID:   result.EncryptedFiuID,
		URL:              result.URL,
	}

	log.Info("Consent handler generated successfully", "consent_handler", resp.ConsentHandler)
	return resp, nil
}

// consentRequestBody applies defaults to the caller's overrides
func (s *ConsentService) consentRequestBody(req *model.ConsentGenerateRequest) model.ConsentRequestPlusBody {
	templateName, _ := firstOf(explicit(req.TemplateName), always(s.config.DefaultTemplate))
	description, _ := firstOf(explicit(req.ConsentDescription), always(s.config.ConsentDescription))
	redirectURL, _ := firstOf(explicit(req.RedirectURL), always(DefaultGenerateRedirectURL))

	fip := req.FIP
	if fip == nil {
		fip = []string{}
	}

	return model.ConsentRequestPlusBody{
		AAID:               s.config.AAID,
		ConsentDescription: description,
		ConsentDetails: model.ConsentDetails{
			Purpose: req.Purpose.Merge(model.DefaultPurpose()),
		},
		CustID:        req.CustID,
		FIP:           fip,
		RedirectURL:   redirectURL,
		TemplateName:  templateName,
		UserSessionID: userSessionID,
	}
}

// VerifyConsent binds consent handles to the LSP and returns the approval URL.
// Missing request fields are filled from the session named by req.TransactionID.
func (s *ConsentService) VerifyConsent(ctx context.Context, req *model.ConsentVerifyRequest) (*model.ConsentVerifyResponse, error) {
	var session *model.SessionRecord
	if req.TransactionID != "" {
		if rec, ok := s.sessions.Resolve(ctx, req.TransactionID); ok {
			session = rec
		}
	}

	fields := resolveVerifyFields(req, session, verifyDefaults{
		ReturnURL:   s.config.ReturnURL,
		RedirectURL: s.config.RedirectURL,
		LSPID:       s.config.LSPID,
	})

	log := s.logger.WithCustID(fields.CustomerID)
	log.Info("Verifying consent handler",
		"consent_handles", fields.ConsentHandles,
		"has_session_data", session != nil,
		"lsp_id", fields.LSPID,
	)

	token, err := s.auth.Login(ctx)
	if err != nil {
		return nil, &model.DownstreamError{Op: "verify consent handler", Err: err}
	}

	result, err := call[model.EncryptLspConsentBody, model.EncryptLspConsentResult](ctx, s.client, opEncryptLsp, pathEncryptLspConsent, token, model.EncryptLspConsentBody{
		LSPID:          fields.LSPID,
		ConsentHandles: fields.ConsentHandles,
		UserID:         fields.CustomerID,
		URL:            fields.RedirectURL,
		ReturnURL:      fields.ReturnURL,
	})
	if err != nil {
		log.Error("Failed to verify consent handler", "error", err)
		return nil, &model.DownstreamError{Op: "verify consent handler", Err: err}
	}

	log.Info("Consent handler verified successfully", "url", result.URL)
	return &model.ConsentVerifyResponse{URL: result.URL}, nil
}
