package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/internal/logger"
	"relay/pkg/errors"
	"relay/pkg/models"
)

const samplePayload = `{
  "app_id": "chs-monitor-notification-matcher.filing",
  "company_number": "00006400",
  "data": {
    "type": "AP01",
    "description": "appoint-person-director-company-with-name-date",
    "description_values": {
      "appointment_date": "1 December 2024",
      "officer_name": "DR AMIDAT DUPE IYIOLA"
    },
    "date": "2025-02-04"
  },
  "is_delete": false
}`

func envelope(data string) models.Envelope {
	return models.Envelope{Kind: "email", Data: data, NotifiedAt: "2025-02-05T10:00:00Z", UserID: "user-1"}
}

func newExtractor() *Extractor {
	return New(logger.NopLogger())
}

func TestExtractSamplePayload(t *testing.T) {
	e := newExtractor()
	ctx := context.Background()
	env := envelope(samplePayload)

	number, ok, err := e.GetCompanyNumber(ctx, env)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "00006400", number)

	isDelete, err := e.IsDelete(ctx, env)
	require.NoError(t, err)
	assert.False(t, isDelete)

	history, err := e.GetFilingHistory(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, models.FilingHistory{
		Type:        "AP01",
		Description: "appoint-person-director-company-with-name-date",
		Date:        "2025-02-04",
	}, history)

	values, ok, err := e.GetDescriptionValues(ctx, env)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{
		"appointment_date": "1 December 2024",
		"officer_name":     "DR AMIDAT DUPE IYIOLA",
	}, values)
}

func TestOptionalFieldsAbsent(t *testing.T) {
	e := newExtractor()
	ctx := context.Background()
	env := envelope(`{"company_number": null, "data": {"type": "AP01", "description": "x", "date": "2025-01-01"}}`)

	_, ok, err := e.GetCompanyNumber(ctx, env)
	require.NoError(t, err)
	assert.False(t, ok)

	isDelete, err := e.IsDelete(ctx, env)
	require.NoError(t, err)
	assert.False(t, isDelete)

	_, ok, err = e.GetDescriptionValues(ctx, env)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsDeleteCoercion(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`"TRUE"`, true},
		{`"yes"`, false},
		{`1`, true},
		{`0`, false},
		{`{}`, false},
		{`null`, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := newExtractor().IsDelete(context.Background(), envelope(`{"is_delete": `+tt.value+`}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNestedDataNodeMissing(t *testing.T) {
	for name, payload := range map[string]string{
		"absent": `{"company_number": "00006400"}`,
		"null":   `{"company_number": "00006400", "data": null}`,
		"empty":  `{"company_number": "00006400", "data": {}}`,
		"scalar": `{"company_number": "00006400", "data": "text"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := newExtractor().GetFilingHistory(context.Background(), envelope(payload))
			require.Error(t, err)
			assert.True(t, errors.IsNonRetryable(err))
			assert.ErrorIs(t, err, errors.ErrMalformedPayload)
			assert.Equal(t, "data", errors.ContextOf(err))

			_, _, err = newExtractor().GetDescriptionValues(context.Background(), envelope(payload))
			assert.True(t, errors.IsNonRetryable(err))
		})
	}
}

func TestMandatoryFieldMissing(t *testing.T) {
	for _, field := range []string{"type", "description", "date"} {
		t.Run(field, func(t *testing.T) {
			nested := map[string]string{"type": `"AP01"`, "description": `"x"`, "date": `"2025-01-01"`}
			nested[field] = "null"
			payload := `{"data": {"type": ` + nested["type"] + `, "description": ` + nested["description"] + `, "date": ` + nested["date"] + `}}`

			_, err := newExtractor().GetFilingHistory(context.Background(), envelope(payload))
			require.Error(t, err)
			assert.True(t, errors.IsNonRetryable(err))
			assert.ErrorIs(t, err, errors.ErrMissingField)
			assert.NotErrorIs(t, err, errors.ErrMalformedPayload)
			assert.Equal(t, "data", errors.ContextOf(err))
			assert.Contains(t, err.Error(), field)

			var appErr *errors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, field, appErr.Details["field"])
		})
	}
}

func TestMalformedPayload(t *testing.T) {
	for name, payload := range map[string]string{
		"not json": `{"company_number": `,
		"empty":    ``,
		"trailing": `{"company_number": "1"} x`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := newExtractor().GetCompanyNumber(context.Background(), envelope(payload))
			require.Error(t, err)
			assert.True(t, errors.IsNonRetryable(err))
			assert.Equal(t, "data", errors.ContextOf(err))
		})
	}
}

func TestNonStringValues(t *testing.T) {
	e := newExtractor()
	env := envelope(`{"company_number": 6400, "data": {"type": 1, "description": {"a": 1}, "date": true,
		"description_values": {"count": 3, "skip": null, "name": "X"}}}`)

	number, ok, err := e.GetCompanyNumber(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "6400", number)

	history, err := e.GetFilingHistory(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, models.FilingHistory{Type: "1", Description: "", Date: "true"}, history)

	values, ok, err := e.GetDescriptionValues(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"count": "3", "name": "X"}, values)
}

func TestNonObjectPayloadHasNoOptionalFields(t *testing.T) {
	for name, payload := range map[string]string{
		"array":  `[]`,
		"null":   `null`,
		"string": `"x"`,
		"number": `42`,
	} {
		t.Run(name, func(t *testing.T) {
			e := newExtractor()
			ctx := context.Background()

			_, ok, err := e.GetCompanyNumber(ctx, envelope(payload))
			require.NoError(t, err)
			assert.False(t, ok)

			isDelete, err := e.IsDelete(ctx, envelope(payload))
			require.NoError(t, err)
			assert.False(t, isDelete)

			_, err = e.GetFilingHistory(ctx, envelope(payload))
			require.Error(t, err)
			assert.True(t, errors.IsNonRetryable(err))
			assert.Equal(t, "data", errors.ContextOf(err))
		})
	}
}

func TestPayloadParsedOnce(t *testing.T) {
	ctx := context.Background()
	p, err := newExtractor().Parse(ctx, envelope(samplePayload))
	require.NoError(t, err)

	number, ok := p.CompanyNumber(ctx)
	assert.True(t, ok)
	assert.Equal(t, "00006400", number)
	assert.False(t, p.IsDelete())

	history, err := p.FilingHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AP01", history.Type)

	values, ok, err := p.DescriptionValues(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, values, 2)
}

func TestPayloadKeepsFilingError(t *testing.T) {
	ctx := context.Background()
	p, err := newExtractor().Parse(ctx, envelope(`{"company_number": "00006400", "data": {}}`))
	require.NoError(t, err)

	_, first := p.FilingHistory(ctx)
	_, _, second := p.DescriptionValues(ctx)
	require.Error(t, first)
	assert.Equal(t, first, second)
}
