package models

// Envelope is the inbound filing-change event. Data holds JSON-encoded text
// and must be parsed on its own.
type Envelope struct {
	Kind       string `json:"kind"`
	Data       string `json:"data"`
	NotifiedAt string `json:"notified_at"`
	UserID     string `json:"user_id"`
}

// FilingHistory is one filing-history entry. Description starts as the
// dictionary key and is replaced once with the resolved text.
type FilingHistory struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type OutboundMessage struct {
	AppID       string              `json:"app_id"`
	MessageID   string              `json:"message_id"`
	MessageType string              `json:"message_type"`
	Data        OutboundMessageData `json:"data"`
	UserID      string              `json:"user_id"`
	CreatedAt   string              `json:"created_at"`
}

type OutboundMessageData struct {
	CompanyNumber     string `json:"company_number"`
	CompanyName       string `json:"company_name"`
	FilingType        string `json:"filing_type"`
	FilingDescription string `json:"filing_description"`
	FilingDate        string `json:"filing_date"`
	IsDelete          bool   `json:"is_delete"`
	ChsURL            string `json:"chs_url"`
	MonitorURL        string `json:"monitor_url"`
	From              string `json:"from"`
	Subject           string `json:"subject"`
}

// CompanyDetails is the subset of the company profile the relay needs.
type CompanyDetails struct {
	CompanyNumber string `json:"company_number"`
	CompanyName   string `json:"company_name"`
	CompanyStatus string `json:"company_status,omitempty"`
}
