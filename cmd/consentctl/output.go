package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// qrOptions renders a returned URL as a QR code so it can be opened on a phone
type qrOptions struct {
	terminal bool
	pngPath  string
}

func (o *qrOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.terminal, "qr", false, "Print the returned URL as a terminal QR code")
	cmd.Flags().StringVar(&o.pngPath, "qr-png", "", "Also write the QR code as a PNG to this path")
}

func (o *qrOptions) render(w io.Writer, url string) error {
	if url == "" || (!o.terminal && o.pngPath == "") {
		return nil
	}

	if o.terminal {
		qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
	}

	if o.pngPath != "" {
		if err := qrcode.WriteFile(url, qrcode.Medium, 512, o.pngPath); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}
		fmt.Fprintf(w, "QR code saved to: %s\n", o.pngPath)
	}
	return nil
}
