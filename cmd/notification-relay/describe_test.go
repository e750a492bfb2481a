package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	values, err := parseValues([]string{"officer_name=JANE DOE", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"officer_name": "JANE DOE", "note": "a=b", "empty": ""}, values)

	_, err = parseValues([]string{"missing-separator"})
	assert.Error(t, err)

	_, err = parseValues([]string{"=value"})
	assert.Error(t, err)
}

func TestDescribeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"description:\n  appoint-person-director-company-with-name-date: \"**Appointment** of {officer_name} as a director on {appointment_date}\"\n",
	), 0o600))

	cmd := describeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--dictionary", path,
		"appoint-person-director-company-with-name-date",
		"officer_name=DR AMIDAT DUPE IYIOLA",
		"appointment_date=1 December 2024",
	})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Appointment of DR AMIDAT DUPE IYIOLA as a director on 1 December 2024\n", out.String())
}

func TestDescribeCommandUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descriptions.yml")
	require.NoError(t, os.WriteFile(path, []byte("description:\n  a: b\n"), 0o600))

	cmd := describeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dictionary", path, "unknown"})

	assert.Error(t, cmd.Execute())
}
