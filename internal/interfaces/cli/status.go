package cli

import (
	"encoding/json"
	"fmt"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/spf13/cobra"
)

func statusCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <customer>",
		Short: "Print the lock status the service reports for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().QueryStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			status := customerlock.Unlocked()
			if st != nil {
				status = st.Normalize()
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			if !status.Locked {
				fmt.Fprintf(out, "%s is not locked\n", args[0])
				return nil
			}
			presenter := NewTerminalPresenter(out)
			if banner, ok := customerlock.BannerFor(status.Severity); ok {
				presenter.ShowBanner(banner)
			}
			fmt.Fprintf(out, "%s: %s, %d days overdue\n", args[0], status.Status, status.DaysOverdue)
			fmt.Fprintln(out, customerlock.RecordBanner(status.DaysOverdue))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status as JSON")
	return cmd
}
