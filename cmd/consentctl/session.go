package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/internal/repository"
)

const (
	healthProbeKey = "__health_check__"
	healthProbeTTL = 5 * time.Second
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and edit workflow sessions in the session store",
	}

	cmd.AddCommand(sessionGetCmd())
	cmd.AddCommand(sessionPutCmd())
	cmd.AddCommand(sessionUpdateCmd())
	cmd.AddCommand(sessionDeleteCmd())
	cmd.AddCommand(sessionExistsCmd())

	return cmd
}

func sessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the session stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, ok := a.sessions.Resolve(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%w: %s", model.ErrSessionNotFound, args[0])
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func sessionPutCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "put <key> <json|->",
		Short: "Store a session blob, replacing any existing value",
		Example: `  consentctl session put txn-123 '{"transaction_id":"txn-123","consent_handler":"CH-1"}'
  cat session.json | consentctl session put txn-123 - --ttl 1h`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.SaveRaw(cmd.Context(), args[0], data, ttl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s saved\n", args[0])
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Expiry for the session (0 keeps it until deleted)")
	return cmd
}

func sessionUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <key> <json|->",
		Short: "Merge top-level fields into an existing session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			var updates map[string]any
			if err := json.Unmarshal(data, &updates); err != nil {
				return fmt.Errorf("%w: updates must be a JSON object: %w", model.ErrValidation, err)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Update(cmd.Context(), args[0], updates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s updated\n", args[0])
			return nil
		},
	}
}

func sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove the session stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s deleted\n", args[0])
			return nil
		},
	}
}

func sessionExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <key>",
		Short: "Print whether a session is stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			exists, err := a.sessions.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exists)
			return nil
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the session store with a set/get/delete round trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), healthProbeTTL)
			defer cancel()

			if err := repository.Probe(ctx, a.store, healthProbeKey, healthProbeTTL); err != nil {
				return fmt.Errorf("%s session store UNHEALTHY: %w", a.cfg.Session.Backend, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s session store OK\n", a.cfg.Session.Backend)
			return nil
		},
	}
}

// readPayload returns arg, or stdin when arg is "-"
func readPayload(stdin io.Reader, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}
