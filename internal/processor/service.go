package processor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"relay/internal/config"
	"relay/internal/constants"
	"relay/internal/extractor"
	"relay/internal/logger"
	"relay/pkg/logging"
	"relay/pkg/metrics"
	"relay/pkg/models"
	"relay/pkg/tracing"
)

type CompanyLookup interface {
	GetCompanyDetails(ctx context.Context, companyNumber string) (models.CompanyDetails, bool, error)
}

type DescriptionResolver interface {
	Resolve(ctx context.Context, key string, values map[string]string) (string, bool)
}

type AuditStore interface {
	Save(ctx context.Context, msg models.OutboundMessage) error
}

type Dispatcher interface {
	Send(ctx context.Context, msg models.OutboundMessage) error
}

// Outcome describes how a message finished when no error was returned.
type Outcome string

const (
	OutcomeSent            Outcome = constants.StatusSent
	OutcomeNoCompanyNumber Outcome = constants.StatusNoCompanyNumber
	OutcomeCompanyNotFound Outcome = constants.StatusCompanyNotFound
)

type Service interface {
	Process(ctx context.Context, env models.Envelope) (Outcome, error)
}

type serviceImpl struct {
	extractor  *extractor.Extractor
	companies  CompanyLookup
	resolver   DescriptionResolver
	audit      AuditStore
	dispatcher Dispatcher
	links      config.LinksConfig
	logger     logger.Logger
}

func NewService(
	companies CompanyLookup,
	resolver DescriptionResolver,
	audit AuditStore,
	dispatcher Dispatcher,
	links config.LinksConfig,
	log logger.Logger,
) Service {
	return &serviceImpl{
		extractor:  extractor.New(log),
		companies:  companies,
		resolver:   resolver,
		audit:      audit,
		dispatcher: dispatcher,
		links:      links,
		logger:     log,
	}
}

// Process turns one filing notification into an outbound message, records
// it and hands it to the dispatcher. Messages without a usable company are
// acknowledged without side effects.
func (s *serviceImpl) Process(ctx context.Context, env models.Envelope) (outcome Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Process", "envelope.kind", env.Kind)
	defer span.End()

	start := time.Now()
	defer func() {
		status := string(outcome)
		if err != nil {
			status = constants.StatusFailed
			tracing.RecordError(span, err)
		}
		metrics.IncNotificationMessages(status)
		metrics.ObserveNotificationDuration(time.Since(start), status)
	}()

	payload, err := s.extractor.Parse(ctx, env)
	if err != nil {
		return "", err
	}

	companyNumber, ok := payload.CompanyNumber(ctx)
	if !ok || strings.TrimSpace(companyNumber) == "" {
		s.logger.InfowCtx(ctx, "No company number was detected within the notification payload, skipping")
		return OutcomeNoCompanyNumber, nil
	}

	company, found, err := s.companies.GetCompanyDetails(ctx, companyNumber)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Company lookup failed", "company_number", companyNumber, "error", err)
		return "", err
	}
	if !found {
		s.logger.InfowCtx(ctx, "Company was not found, skipping", "company_number", companyNumber)
		return OutcomeCompanyNotFound, nil
	}

	history, err := payload.FilingHistory(ctx)
	if err != nil {
		return "", err
	}

	values, _, err := payload.DescriptionValues(ctx)
	if err != nil {
		return "", err
	}

	description, resolved := s.resolver.Resolve(ctx, history.Description, values)
	if !resolved {
		description = ""
	}
	history.Description = description

	msg := models.NewOutboundMessageBuilder().
		WithHeader(constants.AppID, messageID(ctx), constants.MessageTypeMonitor).
		WithCompany(company).
		WithFiling(history, payload.IsDelete()).
		WithLinks(s.links.ChsURL, s.links.MonitorURL).
		WithSender(constants.SenderAddress).
		WithEnvelope(env).
		Build()

	if err := s.audit.Save(ctx, msg); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to save audit record", "message_id", msg.MessageID, "error", err)
		return "", err
	}

	if err := s.dispatcher.Send(ctx, msg); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to dispatch message", "message_id", msg.MessageID, "error", err)
		return "", err
	}

	s.logger.InfowCtx(ctx, "Notification dispatched",
		"message_id", msg.MessageID,
		"company_number", company.CompanyNumber,
		"filing_type", history.Type,
	)
	return OutcomeSent, nil
}

// messageID reuses the request correlation id so a redelivered message
// keeps its identity; a fresh id is generated otherwise.
func messageID(ctx context.Context) string {
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		return requestID
	}
	return uuid.NewString()
}
