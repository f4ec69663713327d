package facts

import (
	"regexp"

	"github.com/Koninklijke-van-Twist/Veridis/pkg/layout"
)

// Header holds the whole-document identifiers found by pattern search over
// the free text. Any field may be empty when the document does not carry it;
// that is reported, never fatal.
type Header struct {
	CustomerNumber string
	InvoiceNumber  string
	DeliveryNumber string
}

var (
	customerPattern = regexp.MustCompile(`(?i)customer(?:\s+(?:no|number))?\.?\s*:?\s*(\d+)`)
	invoicePattern  = regexp.MustCompile(`(?i)invoice(?:\s+(?:no|number))?\.?\s*:?\s*(\d+)`)
	deliveryPattern = regexp.MustCompile(`(?i)delivery(?:\s+(?:no|number|note))?\.?\s*:?\s*(\d+)`)
)

// ExtractHeader searches every logical line for the anchored header labels.
// The first match per field wins.
func ExtractHeader(pages ...[]layout.Line) Header {
	var h Header
	for _, lines := range pages {
		for _, line := range lines {
			if h.CustomerNumber == "" {
				if m := customerPattern.FindStringSubmatch(line.Text); m != nil {
					h.CustomerNumber = m[1]
				}
			}
			if h.InvoiceNumber == "" {
				if m := invoicePattern.FindStringSubmatch(line.Text); m != nil {
					h.InvoiceNumber = m[1]
				}
			}
			if h.DeliveryNumber == "" {
				if m := deliveryPattern.FindStringSubmatch(line.Text); m != nil {
					h.DeliveryNumber = m[1]
				}
			}
		}
	}
	return h
}
