package models

import "time"

type TemplateVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type EmailTemplate struct {
	ID          int64              `json:"id,omitempty"`
	Name        string             `json:"name"`
	Subject     string             `json:"subject"`
	HTMLContent string             `json:"htmlContent"`
	TextContent string             `json:"textContent"`
	Language    string             `json:"language"`
	Category    string             `json:"category"`
	IsActive    bool               `json:"isActive"`
	Variables   []TemplateVariable `json:"variables,omitempty"`
	CreatedAt   *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
}

type EmailStatus string

const (
	EmailSent       EmailStatus = "sent"
	EmailDelivered  EmailStatus = "delivered"
	EmailFailed     EmailStatus = "failed"
	EmailBounced    EmailStatus = "bounced"
	EmailComplained EmailStatus = "complained"
)

type EmailLog struct {
	ID           int64       `json:"id"`
	Recipient    string      `json:"recipient"`
	Subject      string      `json:"subject"`
	Status       EmailStatus `json:"status"`
	MessageID    string      `json:"messageId,omitempty"`
	SentAt       time.Time   `json:"sentAt"`
	DeliveredAt  *time.Time  `json:"deliveredAt,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	TemplateID   *int64      `json:"templateId,omitempty"`
}

type Attachment struct {
	FileName    string `json:"fileName"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

type EmailMessage struct {
	To          []string     `json:"to"`
	CC          []string     `json:"cc,omitempty"`
	BCC         []string     `json:"bcc,omitempty"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	IsHTML      bool         `json:"isHtml,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type TemplateEmail struct {
	TemplateID   int64             `json:"templateId"`
	To           []string          `json:"to"`
	TemplateData map[string]string `json:"templateData,omitempty"`
	Subject      string            `json:"subject,omitempty"`
}

type BulkRecipient struct {
	Email      string            `json:"email"`
	Name       string            `json:"name,omitempty"`
	CustomData map[string]string `json:"customData,omitempty"`
}

type BulkEmail struct {
	Recipients    []BulkRecipient `json:"recipients"`
	TemplateID    int64           `json:"templateId"`
	Subject       string          `json:"subject"`
	ScheduledDate string          `json:"scheduledDate,omitempty"`
}

type SendResult struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

type BulkResult struct {
	CampaignID string `json:"campaignId"`
	Status     string `json:"status"`
}

type EmailLogParams struct {
	Page      int    `url:"page,omitempty"`
	PageSize  int    `url:"pageSize,omitempty"`
	Status    string `url:"status,omitempty"`
	Recipient string `url:"recipient,omitempty"`
	DateFrom  string `url:"dateFrom,omitempty"`
	DateTo    string `url:"dateTo,omitempty"`
}

type TemplateListParams struct {
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"pageSize,omitempty"`
	Language string `url:"language,omitempty"`
	Category string `url:"category,omitempty"`
	Search   string `url:"search,omitempty"`
}

type EmailStatistics struct {
	TotalSent      int64            `json:"totalSent"`
	TotalDelivered int64            `json:"totalDelivered"`
	TotalFailed    int64            `json:"totalFailed"`
	TotalBounced   int64            `json:"totalBounced"`
	DeliveryRate   float64          `json:"deliveryRate"`
	BounceRate     float64          `json:"bounceRate"`
	ChartData      []EmailDayCounts `json:"chartData"`
}

type EmailDayCounts struct {
	Date      string `json:"date"`
	Sent      int64  `json:"sent"`
	Delivered int64  `json:"delivered"`
	Failed    int64  `json:"failed"`
}

// StatusEvent is a delivery notification from the mail provider.
type StatusEvent struct {
	MessageID string      `json:"messageId"`
	Status    EmailStatus `json:"status"`
	Details   string      `json:"details,omitempty"`
}

type BounceEvent struct {
	MessageID     string `json:"messageId"`
	Recipient     string `json:"recipient"`
	BounceType    string `json:"bounceType"`
	BounceSubType string `json:"bounceSubType"`
	Timestamp     string `json:"timestamp"`
}

type ComplaintEvent struct {
	MessageID     string `json:"messageId"`
	Recipient     string `json:"recipient"`
	ComplaintType string `json:"complaintType"`
	Timestamp     string `json:"timestamp"`
}
