package service

import (
	"context"
	"fmt"

	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/pkg/logger"
)

// Credentials are the AA network channel credentials
type Credentials struct {
	UserID   string
	Password string
}

// Authenticator exchanges credentials for a bearer token. Tokens are
// returned to the caller and never retained.
type Authenticator struct {
	client *AAClient
	creds  Credentials
	logger *logger.Logger
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(client *AAClient, creds Credentials, log *logger.Logger) *Authenticator {
	return &Authenticator{
		client: client,
		creds:  creds,
		logger: log,
	}
}

// Login performs one User/Login call and returns the issued token
func (a *Authenticator) Login(ctx context.Context) (string, error) {
	a.logger.Info("Fetching token from AA network")

	result, err := call[model.LoginBody, model.LoginResult](ctx, a.client, opLogin, pathLogin, "", model.LoginBody{
		UserID:   a.creds.UserID,
		Password: a.creds.Password,
	})
	if err != nil {
		a.logger.Error("AA network login failed", "error", err)
		return "", fmt.Errorf("%w: %w", model.ErrAuthentication, err)
	}
	if result.Token == "" {
		a.logger.Error("AA network login failed", "error", "no token in response")
		return "", fmt.Errorf("%w: no token received from AA network", model.ErrAuthentication)
	}

	a.logger.Info("Successfully logged in to AA network")
	return result.Token, nil
}
