package descriptions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"relay/internal/logger"
)

const appointmentKey = "appoint-person-director-company-with-name-date"

func loadTestdata(t *testing.T) *Dictionary {
	t.Helper()
	dict, err := Load(filepath.Join("testdata", "filing_history_descriptions.yml"))
	require.NoError(t, err)
	return dict
}

func TestLoad(t *testing.T) {
	dict := loadTestdata(t)
	assert.Equal(t, 7, dict.Len())

	template, ok := dict.Lookup(appointmentKey)
	require.True(t, ok)
	assert.Equal(t, "**Appointment** of {officer_name} as a director on {appointment_date}", template)

	number, ok := dict.Lookup("numbered-entry")
	require.True(t, ok)
	assert.Equal(t, "42", number)

	_, ok = dict.Lookup("withdrawn-entry")
	assert.False(t, ok)

	_, ok = dict.Lookup("no-such-key")
	assert.False(t, ok)
}

func TestLoadFailures(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "root is a list", content: "- a\n- b\n"},
		{name: "no description section", content: "other:\n  a: b\n"},
		{name: "description is a scalar", content: "description: text\n"},
		{name: "invalid yaml", content: "description: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dict.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestParseRendersCollectionTemplates(t *testing.T) {
	dict, err := Parse([]byte("description:\n  good: \"**Bold** {x}\"\n  odd:\n    - a\n    - b\n  nested:\n    b: c\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, dict.Len())

	good, ok := dict.Lookup("good")
	require.True(t, ok)
	assert.Equal(t, "**Bold** {x}", good)

	odd, ok := dict.Lookup("odd")
	require.True(t, ok)
	assert.Equal(t, "[a, b]", odd)

	nested, ok := dict.Lookup("nested")
	require.True(t, ok)
	assert.Equal(t, "{b: c}", nested)
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]string
		want     string
	}{
		{
			name:     "all placeholders covered",
			template: "Appointment of {officer_name} on {appointment_date}",
			params:   map[string]string{"officer_name": "JANE DOE", "appointment_date": "1 May 2024"},
			want:     "Appointment of JANE DOE on 1 May 2024",
		},
		{
			name:     "unknown placeholder stays literal",
			template: "Made up to {made_up_date} by {unknown}",
			params:   map[string]string{"made_up_date": "31 March 2024"},
			want:     "Made up to 31 March 2024 by {unknown}",
		},
		{
			name:     "nil params",
			template: "Full accounts made up to {made_up_date}",
			want:     "Full accounts made up to {made_up_date}",
		},
		{
			name:     "value inserted verbatim",
			template: "{a}",
			params:   map[string]string{"a": "{b} $1 *"},
			want:     "{b} $1 *",
		},
		{
			name:     "repeated placeholder",
			template: "{x}-{x}",
			params:   map[string]string{"x": "y"},
			want:     "y-y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.template, tt.params))
		})
	}
}

func TestResolve(t *testing.T) {
	resolver := NewResolver(loadTestdata(t), logger.NopLogger())
	ctx := context.Background()

	description, ok := resolver.Resolve(ctx, appointmentKey, map[string]string{
		"appointment_date": "1 December 2024",
		"officer_name":     "DR AMIDAT DUPE IYIOLA",
	})
	require.True(t, ok)
	assert.Equal(t, "Appointment of DR AMIDAT DUPE IYIOLA as a director on 1 December 2024", description)

	_, ok = resolver.Resolve(ctx, "unknown-key", nil)
	assert.False(t, ok)
}

func TestResolveOutputHasNoAsterisksOrCoveredBraces(t *testing.T) {
	resolver := NewResolver(loadTestdata(t), logger.NopLogger())
	values := map[string]string{
		"old_address":  "1 Old Street",
		"new_address":  "2 New Street",
		"change_date":  "3 March 2025",
		"made_up_date": "31 March 2024",
		"date":         "4 April 2025",
	}

	for _, key := range []string{
		"change-registered-office-address-company-with-date-old-address-new-address",
		"accounts-with-accounts-type-full",
		"capital-allotment-shares",
	} {
		description, ok := resolver.Resolve(context.Background(), key, values)
		require.True(t, ok, key)
		assert.NotContains(t, description, "*", key)
		assert.False(t, strings.ContainsAny(description, "{}"), key)
	}
}

func TestResolveLegacy(t *testing.T) {
	resolver := NewResolver(New(map[string]string{"legacy": "**Dictionary** text"}), logger.NopLogger())

	description, ok := resolver.Resolve(context.Background(), "legacy", map[string]string{
		"description": "Already *final* {text}",
	})
	require.True(t, ok)
	assert.Equal(t, "Already *final* {text}", description)

	description, ok = resolver.Resolve(context.Background(), "legacy", map[string]string{})
	require.True(t, ok)
	assert.Equal(t, "Dictionary text", description)
}

func TestResolveBlankKeyLogsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	resolver := NewResolver(New(map[string]string{"": "never"}), logger.NewWithCore(core, "test"))

	_, ok := resolver.Resolve(context.Background(), " ", nil)
	assert.False(t, ok)
	_, ok = resolver.Resolve(context.Background(), "", nil)
	assert.False(t, ok)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestResolveUnknownKeyLogsInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	resolver := NewResolver(New(nil), logger.NewWithCore(core, "test"))

	_, ok := resolver.Resolve(context.Background(), "missing", nil)
	assert.False(t, ok)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, "missing", logs.All()[0].ContextMap()["description_key"])
}
