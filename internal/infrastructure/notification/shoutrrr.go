// Package notification delivers lock notifications through shoutrrr services
// (smtp, slack, teams, generic webhooks, ...).
package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"

	"github.com/erp/invoicelock/internal/application/customerlock"
)

// DefaultRecipientParam is the shoutrrr parameter carrying the recipient
// address; it matches the smtp service
const DefaultRecipientParam = "toaddresses"

// sender is the part of the shoutrrr router used here
type sender interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrNotifier sends lock notifications to every configured URL
type ShoutrrrNotifier struct {
	sender         sender
	recipientParam string
	logger         *zap.Logger
}

// NewShoutrrrNotifier validates urls and builds one sender for all of them
func NewShoutrrrNotifier(urls []string, timeout time.Duration, recipientParam string, logger *zap.Logger) (*ShoutrrrNotifier, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one notification URL is required")
	}
	router, err := shoutrrr.CreateSender(slices.Clone(urls)...)
	if err != nil {
		// the raw error can echo credentials embedded in the URL
		return nil, fmt.Errorf("invalid notification URL: %s", redact(err))
	}
	if timeout > 0 {
		router.Timeout = timeout
	}
	router.SetLogger(log.New(io.Discard, "", 0))
	return newNotifier(router, recipientParam, logger), nil
}

func newNotifier(s sender, recipientParam string, logger *zap.Logger) *ShoutrrrNotifier {
	if recipientParam == "" {
		recipientParam = DefaultRecipientParam
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoutrrrNotifier{sender: s, recipientParam: recipientParam, logger: logger.Named("notifier")}
}

// Notify sends n. The router applies its own timeout; ctx is only checked
// before sending.
func (s *ShoutrrrNotifier) Notify(ctx context.Context, n customerlock.LockNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := stypes.Params{}
	params.SetTitle(n.Subject)
	if n.Recipient != "" {
		params[s.recipientParam] = n.Recipient
	}

	var failed []error
	for _, err := range s.sender.Send(n.Body, &params) {
		if err != nil {
			failed = append(failed, errors.New(redact(err)))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("notify %s: %w", n.Customer, errors.Join(failed...))
	}

	s.logger.Info("Lock notification sent",
		zap.String("customer", n.Customer),
		zap.String("recipient", n.Recipient),
		zap.Stringer("severity", n.Severity))
	return nil
}

var _ customerlock.Notifier = (*ShoutrrrNotifier)(nil)
