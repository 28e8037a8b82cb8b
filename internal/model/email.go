package model

// Category is the triage label assigned to an email after decoding.
type Category string

const (
	CategoryFinance    Category = "Finance"
	CategoryWork       Category = "Work"
	CategoryPromotions Category = "Promotions"
	CategoryOthers     Category = "Others"
)

// Categories lists all labels in display order, Others last.
var Categories = []Category{
	CategoryFinance,
	CategoryWork,
	CategoryPromotions,
	CategoryOthers,
}

// Placeholder values used when a header is absent from the raw message.
const (
	NoSubject   = "No Subject"
	UnknownFrom = "Unknown"
	UnknownDate = "Unknown"
)

// Sentinel body values used when no decodable text is found.
const (
	NoTextContent = "No text content found"
	NoContent     = "No content found"
)

// EmailRecord is the durable unit of the system: one fetched message,
// decoded and enriched. IDs are unique within a fetch batch only; each
// successful fetch replaces the previous record set wholesale.
type EmailRecord struct {
	// ID is the server-assigned UID of the message within its folder.
	ID uint32 `json:"id"`

	// Subject is the decoded Subject header, or NoSubject.
	Subject string `json:"subject"`

	// From is the decoded From header, or UnknownFrom.
	From string `json:"from"`

	// Content is the plain-text body, or a sentinel when extraction fails.
	Content string `json:"content"`

	// Date is the raw Date header text, or UnknownDate.
	Date string `json:"date"`

	// Category is assigned by the categorizer after decoding.
	Category Category `json:"category"`

	// Summary is assigned by the summarizer after decoding: a generated
	// summary, the original content if too short, or a failure string.
	Summary string `json:"summary"`
}

// Enriched reports whether the record has been through the enrichment
// stage. Records must be enriched before display or persistence.
func (r EmailRecord) Enriched() bool {
	return r.Category != "" && r.Summary != ""
}
