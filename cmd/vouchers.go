package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/giftvault/voucher-service/internal/model"
	"github.com/giftvault/voucher-service/internal/store"
)

var vouchersCmd = &cobra.Command{
	Use:   "vouchers",
	Short: "Manage saved vouchers",
}

var (
	saveSourceType string

	saveCmd = &cobra.Command{
		Use:   "save [draft.json]",
		Short: "Save an accepted draft",
		Long:  "Saves a draft JSON file (or stdin with -) to the local store. Saving the same store, code, amount, and expiry twice is rejected as a duplicate.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = readAllStdin()
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return eris.Wrap(err, "read draft")
			}

			var draft model.Draft
			if err := json.Unmarshal(data, &draft); err != nil {
				return eris.Wrap(err, "parse draft")
			}

			st, err := store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return eris.Wrap(err, "open store")
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}

			saved, err := st.SaveVoucher(cmd.Context(), draft, saveSourceType)
			if err != nil {
				return err
			}

			fmt.Printf("saved %s (fingerprint %s)\n", saved.ID, saved.Fingerprint[:12])
			return nil
		},
	}
)

var (
	listStore  string
	listSource string
	listLimit  int

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List saved vouchers",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLite(cfg.Store.Path)
			if err != nil {
				return eris.Wrap(err, "open store")
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}

			vouchers, err := st.ListVouchers(cmd.Context(), store.Filter{
				Store:  listStore,
				Source: listSource,
				Limit:  listLimit,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(vouchers, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal vouchers")
			}
			fmt.Println(string(out))
			return nil
		},
	}
)

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

func init() {
	saveCmd.Flags().StringVar(&saveSourceType, "source-type", "sms", "message source the draft came from")
	listCmd.Flags().StringVar(&listStore, "store", "", "filter by store name")
	listCmd.Flags().StringVar(&listSource, "source", "", "filter by source type")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows")
	vouchersCmd.AddCommand(saveCmd, listCmd)
	rootCmd.AddCommand(vouchersCmd)
}
