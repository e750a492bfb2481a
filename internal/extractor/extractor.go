package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"relay/internal/logger"
	"relay/pkg/errors"
	"relay/pkg/models"
)

const (
	fieldCompanyNumber     = "company_number"
	fieldIsDelete          = "is_delete"
	fieldData              = "data"
	fieldType              = "type"
	fieldDescription       = "description"
	fieldDate              = "date"
	fieldDescriptionValues = "description_values"
)

type node map[string]json.RawMessage

// Extractor reads typed fields out of an envelope's opaque data payload.
type Extractor struct {
	logger logger.Logger
}

func New(log logger.Logger) *Extractor {
	return &Extractor{logger: log}
}

// Payload is the parsed data of one envelope. Parse it once per message and
// read fields from it; the nested filing node is decoded on first use.
type Payload struct {
	logger logger.Logger
	root   node

	filing    node
	filingErr error
	filingSet bool
}

// Parse decodes env.Data. Only a JSON syntax error fails; valid JSON that is
// not an object yields a payload without any optional fields.
func (e *Extractor) Parse(ctx context.Context, env models.Envelope) (*Payload, error) {
	var root node
	if err := json.Unmarshal([]byte(env.Data), &root); err != nil {
		if _, wrongType := err.(*json.UnmarshalTypeError); !wrongType {
			e.logger.ErrorwCtx(ctx, "An error occurred while attempting to extract the json node", "node", fieldData, "error", err)
			return nil, errors.NonRetryable(errors.ErrMalformedPayload, fieldData, err)
		}
		e.logger.DebugwCtx(ctx, "Payload is not a json object", "error", err)
		root = nil
	}
	return &Payload{logger: e.logger, root: root}, nil
}

// GetCompanyNumber returns the top-level company_number, if any.
func (e *Extractor) GetCompanyNumber(ctx context.Context, env models.Envelope) (string, bool, error) {
	p, err := e.Parse(ctx, env)
	if err != nil {
		return "", false, err
	}
	number, ok := p.CompanyNumber(ctx)
	return number, ok, nil
}

// IsDelete reports the top-level is_delete flag, defaulting to false.
func (e *Extractor) IsDelete(ctx context.Context, env models.Envelope) (bool, error) {
	p, err := e.Parse(ctx, env)
	if err != nil {
		return false, err
	}
	return p.IsDelete(), nil
}

func (e *Extractor) GetFilingHistory(ctx context.Context, env models.Envelope) (models.FilingHistory, error) {
	p, err := e.Parse(ctx, env)
	if err != nil {
		return models.FilingHistory{}, err
	}
	return p.FilingHistory(ctx)
}

func (e *Extractor) GetDescriptionValues(ctx context.Context, env models.Envelope) (map[string]string, bool, error) {
	p, err := e.Parse(ctx, env)
	if err != nil {
		return nil, false, err
	}
	return p.DescriptionValues(ctx)
}

func (p *Payload) CompanyNumber(ctx context.Context) (string, bool) {
	raw, ok := optional(p.root, fieldCompanyNumber)
	if !ok {
		p.logger.DebugwCtx(ctx, "Payload has no company number")
		return "", false
	}
	return asText(raw), true
}

func (p *Payload) IsDelete() bool {
	raw, ok := optional(p.root, fieldIsDelete)
	if !ok {
		return false
	}
	return asBool(raw)
}

// FilingHistory reads the mandatory fields of the nested filing node.
func (p *Payload) FilingHistory(ctx context.Context) (models.FilingHistory, error) {
	filing, err := p.filingNode(ctx)
	if err != nil {
		return models.FilingHistory{}, err
	}

	var history models.FilingHistory
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{fieldType, &history.Type},
		{fieldDescription, &history.Description},
		{fieldDate, &history.Date},
	} {
		raw, ok := optional(filing, f.name)
		if !ok {
			p.logger.InfowCtx(ctx, "Filing node is missing a mandatory field", "node", fieldData, "field", f.name)
			return models.FilingHistory{}, errors.NonRetryable(errors.ErrMissingField, fieldData,
				fmt.Errorf("supplied node does not contain a valid %q node", f.name)).
				WithDetail("field", f.name)
		}
		*f.dst = asText(raw)
	}

	return history, nil
}

// DescriptionValues returns the interpolation parameters of the filing.
// Non-string values are converted to their text form and nulls are skipped.
func (p *Payload) DescriptionValues(ctx context.Context) (map[string]string, bool, error) {
	filing, err := p.filingNode(ctx)
	if err != nil {
		return nil, false, err
	}

	raw, ok := optional(filing, fieldDescriptionValues)
	if !ok {
		return nil, false, nil
	}

	var values node
	if err := json.Unmarshal(raw, &values); err != nil {
		p.logger.DebugwCtx(ctx, "Description values are not an object")
		return nil, false, nil
	}

	result := make(map[string]string, len(values))
	for k, v := range values {
		if isNull(v) {
			continue
		}
		result[k] = asText(v)
	}
	return result, true, nil
}

func (p *Payload) filingNode(ctx context.Context) (node, error) {
	if p.filingSet {
		return p.filing, p.filingErr
	}
	p.filingSet = true

	raw, ok := optional(p.root, fieldData)
	var filing node
	if ok {
		if jsonErr := json.Unmarshal(raw, &filing); jsonErr != nil {
			filing = nil
		}
	}
	if len(filing) == 0 {
		cause := fmt.Errorf("no nested %q node found in message payload", fieldData)
		p.logger.ErrorwCtx(ctx, "An error occurred while attempting to extract the json node", "node", fieldData, "error", cause)
		p.filingErr = errors.NonRetryable(errors.ErrMalformedPayload, fieldData, cause)
		return nil, p.filingErr
	}
	p.filing = filing
	return filing, nil
}

// optional returns the raw value of key, treating JSON null as absent.
func optional(n node, key string) (json.RawMessage, bool) {
	raw, ok := n[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// asText renders strings unquoted, scalars as their literal text and
// containers as the empty string.
func asText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case '{', '[':
		return ""
	default:
		return string(trimmed)
	}
}

func asBool(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return false
		}
		return b
	case '"':
		return strings.EqualFold(asText(trimmed), "true")
	case '{', '[':
		return false
	default:
		n, err := strconv.ParseFloat(string(trimmed), 64)
		return err == nil && n != 0
	}
}
