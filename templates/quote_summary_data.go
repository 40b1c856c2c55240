package templates

// SummaryLine is one labelled amount of the totals block.
type SummaryLine struct {
	Label string
	Value string
	Bold  bool
}

// SummarySolution is one solution row of a labor quote summary.
type SummarySolution struct {
	Name  string
	Hours string
	Total string
}

// QuoteSummaryData is the view model of the quote summary page. All amounts
// are already formatted.
type QuoteSummaryData struct {
	ID           string
	QuoteNumber  string
	CustomerName string
	Kind         string
	Status       string
	CreatedDate  string
	Description  string
	Solutions    []SummarySolution
	Lines        []SummaryLine
	Notes        string
	ExportURL    string
	ExportLabel  string
}

// statusBadgeClass maps a quote status to its badge colour.
func statusBadgeClass(status string) string {
	switch status {
	case "approved":
		return "badge badge-success"
	case "denied":
		return "badge badge-error"
	}
	return "badge badge-warning"
}
