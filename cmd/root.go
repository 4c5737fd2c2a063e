package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giftvault/voucher-service/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "voucher-service",
	Short: "Voucher extraction trust layer",
	Long:  "Extracts gift card and voucher details from forwarded SMS and chat messages using a deterministic offline pass with guarded Claude escalation.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
