package events

import "time"

const (
	InvoiceDocumentRequestedTopic = "cep360.invoice.document.requested.v1"
	InvoiceDocumentRequestedType  = "invoice.document.requested"
)

// InvoiceDocumentRequestedEvent asks a consumer to render and publish the
// document of an already committed invoice.
type InvoiceDocumentRequestedEvent struct {
	EventType   string    `json:"event_type"`
	InvoiceID   string    `json:"invoice_id"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

const (
	ReasonRequested     = "requested"
	ReasonPublishFailed = "publish_failed"
)
