package models

import "fmt"

type OutboundMessageBuilder struct {
	message *OutboundMessage
}

func NewOutboundMessageBuilder() *OutboundMessageBuilder {
	return &OutboundMessageBuilder{
		message: &OutboundMessage{},
	}
}

func (b *OutboundMessageBuilder) WithHeader(appID, messageID, messageType string) *OutboundMessageBuilder {
	b.message.AppID = appID
	b.message.MessageID = messageID
	b.message.MessageType = messageType
	return b
}

func (b *OutboundMessageBuilder) WithCompany(details CompanyDetails) *OutboundMessageBuilder {
	b.message.Data.CompanyNumber = details.CompanyNumber
	b.message.Data.CompanyName = details.CompanyName
	b.message.Data.Subject = fmt.Sprintf("Company number %s %s", details.CompanyNumber, details.CompanyName)
	return b
}

func (b *OutboundMessageBuilder) WithFiling(history FilingHistory, isDelete bool) *OutboundMessageBuilder {
	b.message.Data.FilingType = history.Type
	b.message.Data.FilingDescription = history.Description
	b.message.Data.FilingDate = history.Date
	b.message.Data.IsDelete = isDelete
	return b
}

func (b *OutboundMessageBuilder) WithLinks(chsURL, monitorURL string) *OutboundMessageBuilder {
	b.message.Data.ChsURL = chsURL
	b.message.Data.MonitorURL = monitorURL
	return b
}

func (b *OutboundMessageBuilder) WithSender(from string) *OutboundMessageBuilder {
	b.message.Data.From = from
	return b
}

func (b *OutboundMessageBuilder) WithEnvelope(envelope Envelope) *OutboundMessageBuilder {
	b.message.UserID = envelope.UserID
	b.message.CreatedAt = envelope.NotifiedAt
	return b
}

func (b *OutboundMessageBuilder) Build() OutboundMessage {
	return *b.message
}
