package customerlock

import "fmt"

// BannerColor is the indicator color of a lock banner
type BannerColor string

const (
	BannerRed    BannerColor = "red"
	BannerYellow BannerColor = "yellow"
)

// Banner is the persistent lock banner shown on the form
type Banner struct {
	Text  string      `json:"text"`
	Color BannerColor `json:"color"`
}

// IsZero reports whether no banner is set
func (b Banner) IsZero() bool {
	return b.Text == "" && b.Color == ""
}

// Notice is the one-time interruptive message shown when a severity is first seen
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Presentation texts
const (
	HardBannerText     = "Customer is Locked 50+ Days Past Due"
	SoftBannerText     = "Customer is Soft Locked 40 Days Past Due"
	NoticeTitle        = "Customer Locked"
	SaveBlockedMessage = "Cannot save this document. Customer is locked due to overdue invoices."
)

// BannerFor returns the banner for a severity; ok is false when nothing is shown
func BannerFor(sev Severity) (Banner, bool) {
	switch sev {
	case SeverityHard:
		return Banner{Text: HardBannerText, Color: BannerRed}, true
	case SeveritySoft:
		return Banner{Text: SoftBannerText, Color: BannerYellow}, true
	default:
		return Banner{}, false
	}
}

// NoticeFor builds the one-time notice naming the affected document type
func NoticeFor(doc DocumentType, sev Severity) Notice {
	if sev == SeverityHard {
		return Notice{
			Title:   NoticeTitle,
			Message: fmt.Sprintf("This customer is locked and cannot be used for %s.", doc.Plural()),
		}
	}
	return Notice{
		Title: NoticeTitle,
		Message: fmt.Sprintf("This customer is soft locked due to overdue invoices. "+
			"Please check with Accounting before continuing this %s.", doc),
	}
}

// RecordBanner returns the status line shown on the customer record itself
func RecordBanner(daysOverdue int) string {
	switch SeverityForDays(daysOverdue) {
	case SeverityHard:
		return "CUSTOMER IS HARD LOCKED (50+ DAYS OVERDUE)"
	case SeveritySoft:
		return "CUSTOMER IS SOFT LOCKED (40+ DAYS OVERDUE) SEE ACCOUNTING."
	default:
		return "Locked"
	}
}
