package dashboard

import "github.com/shopspring/decimal"

// Stats is the landing-page summary for one owner. Revenue counts paid
// invoices only; outstanding covers pending and overdue. The display
// fields carry the French-locale Euro strings the UI shows as-is.
type Stats struct {
	Revenue            decimal.Decimal `json:"revenue"`
	RevenueDisplay     string          `json:"revenue_display"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	OutstandingDisplay string          `json:"outstanding_display"`
	InvoiceCounts      map[string]int  `json:"invoice_counts"`
	QuoteCounts        map[string]int  `json:"quote_counts"`
	ClientCount        int             `json:"client_count"`
	UpcomingBookings   int             `json:"upcoming_bookings"`
	QuoteAcceptancePct decimal.Decimal `json:"quote_acceptance_pct"`
}
