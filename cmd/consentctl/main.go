package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aa-consent-gateway/internal/config"
	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/internal/repository"
	"aa-consent-gateway/internal/service"
	"aa-consent-gateway/pkg/logger"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "consentctl",
		Short: "Operate the AA consent gateway from the command line",
		Long: `consentctl drives the same consent and session services as the HTTP
gateway, using the gateway's environment (.env) for credentials and the
session store.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "WARN", "Log level written to stderr (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(healthCmd())

	return rootCmd
}

// app holds the services a command runs against
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	store    repository.SessionStore
	sessions *service.SessionResolver
	consent  *service.ConsentService
}

// openApp loads configuration and connects the session store
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, _ := cmd.Flags().GetString("log-level")
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level)

	store, err := repository.Open(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s session store: %w", cfg.Session.Backend, err)
	}

	reg := metrics.New()
	client := service.NewAAClient(cfg.Finvu.BaseURL, cfg.Finvu.Timeout, service.NewEnvelopeBuilder(), reg, log)
	auth := service.NewAuthenticator(client, service.Credentials{
		UserID:   cfg.Finvu.UserID,
		Password: cfg.Finvu.Password,
	}, log)
	sessions := service.NewSessionResolver(store, reg, log)

	return &app{
		cfg:      cfg,
		logger:   log,
		store:    store,
		sessions: sessions,
		consent:  service.NewConsentService(client, auth, sessions, &cfg.Finvu, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
