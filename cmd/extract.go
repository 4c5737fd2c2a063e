package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/giftvault/voucher-service/internal/service"
)

var (
	extractSourceType string
	extractOffline    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract voucher details from a message",
	Long:  "Runs one message through the extraction pipeline and prints the resulting draft as JSON. Reads from stdin when no argument is given. Prints null for a confident non-voucher.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return eris.Wrap(err, "read stdin")
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return eris.New("no text to extract")
		}

		if extractOffline {
			cfg.Anthropic.Key = ""
		}
		svc, err := buildService()
		if err != nil {
			return err
		}

		draft, err := svc.Extract(cmd.Context(), service.Request{
			SourceText: text,
			SourceType: extractSourceType,
		})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(draft, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal draft")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSourceType, "source-type", "sms", "message source (sms or chat)")
	extractCmd.Flags().BoolVar(&extractOffline, "offline", false, "skip the provider pass even when an API key is configured")
	rootCmd.AddCommand(extractCmd)
}
