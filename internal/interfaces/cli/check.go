package cli

import (
	"fmt"
	"strings"

	appcl "github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/spf13/cobra"
)

// Form events a check can be triggered by
const (
	eventRefresh = "refresh"
	eventChange  = "change"
	eventRender  = "render"
)

func checkCmd(opts *options) *cobra.Command {
	var (
		customer    string
		doctype     string
		event       string
		blockSoft   bool
		clearOnHard bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Open a document form for a customer and try to save it",
		Long: `Runs the form lock check against the status service the way a sales form
does: the chosen form event triggers a status query, the banner and notice are
printed, then the save gate is evaluated.

Exits non-zero when saving is blocked.`,
		Example: `  lockcheck check --customer ACME-001 --doctype "Sales Order"
  lockcheck check --customer ACME-001 --doctype Quotation --event render --block-soft`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := customerlock.ParseDocumentType(doctype)
			if err != nil {
				return err
			}

			policy := opts.policy()
			if cmd.Flags().Changed("block-soft") {
				policy.BlockSoft = blockSoft
			}
			if cmd.Flags().Changed("clear-on-hard") {
				policy.ClearOnHard = clearOnHard
			}

			presenter := NewTerminalPresenter(cmd.OutOrStdout())
			checker := appcl.NewChecker(opts.client(), opts.logger, appcl.WithPolicy(policy))
			form := appcl.NewFormController(checker, doc, presenter)

			ctx := cmd.Context()
			switch strings.ToLower(event) {
			case eventRefresh:
				form.OnRefresh(ctx, customer)
			case eventChange:
				form.OnCustomerChange(ctx, customer)
			case eventRender:
				form.OnRender(ctx, customer)
			default:
				return fmt.Errorf("unknown event %q (use %s, %s or %s)", event, eventRefresh, eventChange, eventRender)
			}
			form.Wait()

			saveErr := form.OnValidate()
			presenter.SaveResult(doc, saveErr)
			if saveErr != nil {
				return ErrSaveBlocked
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer assigned to the document")
	cmd.Flags().StringVarP(&doctype, "doctype", "d", string(customerlock.DocumentSalesOrder), `Document type ("Sales Order" or "Quotation")`)
	cmd.Flags().StringVarP(&event, "event", "e", eventRefresh, "Form event that triggers the check: refresh, change or render")
	cmd.Flags().BoolVar(&blockSoft, "block-soft", false, "Block saving on soft locks too (overrides lock.block_soft)")
	cmd.Flags().BoolVar(&clearOnHard, "clear-on-hard", false, "Clear the customer field on hard locks (overrides lock.clear_on_hard)")
	return cmd
}
