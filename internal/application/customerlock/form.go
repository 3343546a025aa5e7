package customerlock

import (
	"context"
	"strings"
	"sync"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
)

// FormController binds the lock check to the events of one document form.
// Form-open, customer-change and post-render events dispatch an asynchronous
// check; pre-save validation consults the session synchronously.
type FormController struct {
	checker *Checker
	session *FormSession
	wg      sync.WaitGroup
}

// NewFormController opens a form session for the document and binds it to the checker
func NewFormController(checker *Checker, doc customerlock.DocumentType, presenter Presenter) *FormController {
	return &FormController{
		checker: checker,
		session: NewFormSession(doc, presenter),
	}
}

// Session returns the form session
func (f *FormController) Session() *FormSession {
	return f.session
}

// OnRefresh handles the document being opened or refreshed. A check runs only
// if a customer is already assigned.
func (f *FormController) OnRefresh(ctx context.Context, customer string) {
	if strings.TrimSpace(customer) == "" {
		return
	}
	f.dispatch(ctx, customer)
}

// OnCustomerChange handles edits of the customer field. Clearing the field
// resets the lock state and banner immediately.
func (f *FormController) OnCustomerChange(ctx context.Context, customer string) {
	if strings.TrimSpace(customer) == "" {
		f.checker.Evaluate(ctx, f.session, "")
		return
	}
	f.dispatch(ctx, customer)
}

// OnRender handles the post-render hook. Only Quotation forms re-check here.
func (f *FormController) OnRender(ctx context.Context, customer string) {
	if !f.session.Document.HasPostRenderHook() {
		return
	}
	f.OnRefresh(ctx, customer)
}

// OnValidate is the save gate. It fails with a CUSTOMER_LOCKED error while
// the last applied status blocks saving.
func (f *FormController) OnValidate() error {
	if !f.session.Blocked() {
		return nil
	}
	f.checker.recorder.ObserveSaveBlocked(f.session.Document)
	return shared.NewDomainError(shared.CodeCustomerLocked, customerlock.SaveBlockedMessage)
}

// Wait blocks until every dispatched check has completed
func (f *FormController) Wait() {
	f.wg.Wait()
}

// dispatch issues the query sequence number in event order, then runs the
// check in the background
func (f *FormController) dispatch(ctx context.Context, customer string) {
	customer = strings.TrimSpace(customer)
	seq := f.session.begin(customer)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.checker.evaluate(ctx, f.session, seq, customer)
	}()
}
