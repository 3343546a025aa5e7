package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/fatih/color"
)

// TerminalPresenter renders form lock decisions as coloured terminal lines.
// Checks complete on background goroutines, so writes are serialized.
type TerminalPresenter struct {
	mu  sync.Mutex
	out io.Writer

	red    *color.Color
	yellow *color.Color
	bold   *color.Color
	faint  *color.Color

	// customerCleared records whether the form would have emptied the customer
	customerCleared bool
}

// NewTerminalPresenter creates a presenter writing to out
func NewTerminalPresenter(out io.Writer) *TerminalPresenter {
	return &TerminalPresenter{
		out:    out,
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow, color.Bold),
		bold:   color.New(color.Bold),
		faint:  color.New(color.Faint),
	}
}

// ShowBanner implements customerlock.Presenter
func (p *TerminalPresenter) ShowBanner(banner customerlock.Banner) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.yellow
	if banner.Color == customerlock.BannerRed {
		c = p.red
	}
	fmt.Fprintf(p.out, "%s %s\n", c.Sprint("■"), c.Sprint(banner.Text))
}

// ClearBanner implements customerlock.Presenter
func (p *TerminalPresenter) ClearBanner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.faint.Sprint("(no lock banner)"))
}

// ShowNotice implements customerlock.Presenter
func (p *TerminalPresenter) ShowNotice(notice customerlock.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: %s\n", p.bold.Sprint(notice.Title), notice.Message)
}

// ClearCustomer implements customerlock.Presenter
func (p *TerminalPresenter) ClearCustomer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customerCleared = true
	fmt.Fprintln(p.out, p.red.Sprint("Customer field cleared"))
}

// CustomerCleared reports whether ClearCustomer was called
func (p *TerminalPresenter) CustomerCleared() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.customerCleared
}

// SaveResult prints the outcome of the save gate
func (p *TerminalPresenter) SaveResult(doc customerlock.DocumentType, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		fmt.Fprintf(p.out, "%s %s\n", p.red.Sprint("✗ Save blocked:"), err.Error())
		return
	}
	fmt.Fprintf(p.out, "%s %s can be saved\n", color.New(color.FgGreen).Sprint("✓"), doc)
}
