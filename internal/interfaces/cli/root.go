// Package cli implements lockcheck, a terminal simulator of the sales form
// lock check.
package cli

import (
	"errors"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/config"
	"github.com/erp/invoicelock/internal/infrastructure/logger"
	"github.com/erp/invoicelock/internal/infrastructure/statusclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrSaveBlocked is returned by check when the document could not be saved
var ErrSaveBlocked = errors.New("save blocked by customer lock")

// options are the persistent flags shared by every command
type options struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// RootCmd returns the lockcheck command tree
func RootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "lockcheck",
		Short:         "Simulate the customer lock check of a sales form",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config.toml (defaults to ./config.toml or /app/config.toml)")
	flags.StringVar(&opts.baseURL, "url", "", "Base URL of the lock status service (overrides status_client.base_url)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Status query timeout (overrides status_client.timeout)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log status queries to stderr")

	cmd.AddCommand(checkCmd(opts))
	cmd.AddCommand(statusCmd(opts))
	return cmd
}

// load resolves configuration; flags win over config file and environment
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("url") {
		cfg.StatusClient.BaseURL = o.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.StatusClient.Timeout = o.timeout
	}
	o.cfg = cfg

	level := "error"
	if o.verbose {
		level = "debug"
	}
	o.logger, err = logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	return err
}

func (o *options) client() *statusclient.Client {
	return statusclient.New(o.cfg.StatusClient.BaseURL, o.cfg.StatusClient.Timeout, statusclient.WithLogger(o.logger))
}

func (o *options) policy() customerlock.Policy {
	return customerlock.Policy{
		BlockSoft:   o.cfg.Lock.BlockSoft,
		ClearOnHard: o.cfg.Lock.ClearOnHard,
	}
}
