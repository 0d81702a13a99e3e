package main

import (
	"github.com/spf13/cobra"

	"aa-consent-gateway/internal/model"
)

func generateCmd() *cobra.Command {
	var req model.ConsentGenerateRequest
	var qr qrOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a consent request and print the consent handle",
		Example: `  consentctl generate --cust-id 9990001111@finvu
  consentctl generate --cust-id 9990001111@finvu --template BANK_STATEMENT_ONETIME --qr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.consent.GenerateConsent(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			return qr.render(cmd.OutOrStdout(), resp.URL)
		},
	}

	cmd.Flags().StringVar(&req.CustID, "cust-id", "", "AA customer id, e.g. 9990001111@finvu (required)")
	cmd.Flags().StringVar(&req.TemplateName, "template", "", "Consent template (defaults to FINVU_DEFAULT_TEMPLATE)")
	cmd.Flags().StringVar(&req.ConsentDescription, "description", "", "Consent description (defaults to FINVU_CONSENT_DESCRIPTION)")
	cmd.Flags().StringVar(&req.RedirectURL, "redirect-url", "", "Redirect URL after consent")
	cmd.Flags().StringSliceVar(&req.FIP, "fip", nil, "FIP ids to restrict the consent to")
	cmd.MarkFlagRequired("cust-id")
	qr.bind(cmd)

	return cmd
}

func verifyCmd() *cobra.Command {
	var req model.ConsentVerifyRequest
	var qr qrOptions

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Bind consent handles to the LSP and print the approval URL",
		Long: `verify fills any field not given on the command line from the session
stored under --transaction-id, then falls back to the configured defaults.
Pass --handle= to send an explicitly empty handle list.`,
		Example: `  consentctl verify --transaction-id txn-123 --qr
  consentctl verify --user-id 9990001111@finvu --handle CH-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("handle") {
				req.ConsentHandles = nil
			} else if req.ConsentHandles == nil {
				req.ConsentHandles = []string{}
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.consent.VerifyConsent(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			return qr.render(cmd.OutOrStdout(), resp.URL)
		},
	}

	cmd.Flags().StringVar(&req.TransactionID, "transaction-id", "", "Session key to read defaults from")
	cmd.Flags().StringVar(&req.UserID, "user-id", "", "AA customer id")
	cmd.Flags().StringSliceVar(&req.ConsentHandles, "handle", nil, "Consent handle (repeatable)")
	cmd.Flags().StringVar(&req.LSPID, "lsp-id", "", "LSP id (defaults to FINVU_LSP_ID)")
	cmd.Flags().StringVar(&req.ReturnURL, "return-url", "", "Return URL after approval")
	cmd.Flags().StringVar(&req.RedirectURL, "redirect-url", "", "AA redirect URL (defaults to FINVU_REDIRECT_URL)")
	qr.bind(cmd)

	return cmd
}
