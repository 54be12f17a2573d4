package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAddresses(t *testing.T) {
	emails, err := readAddresses(strings.NewReader("a@example.com\n\n  b@example.com  \r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, emails)
}

func TestBuildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := buildLogger(&buf, "debug", "json")
	require.NoError(t, err)
	logger.Debug().Str("k", "v").Msg("hello")
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	logger, err = buildLogger(&buf, "warn", "console")
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	_, err = buildLogger(&buf, "info", "xml")
	assert.Error(t, err)

	_, err = buildLogger(&buf, "loud", "json")
	assert.Error(t, err)
}

func TestVerifyCommand_Stdin(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader("webmaster@example.com\nnot-an-address\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"verify", "--log-level", "error", "-"})
	require.NoError(t, rootCmd.Execute())

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]string{
		"webmaster@example.com": "role_based",
		"not-an-address":        "invalid_format",
	}, got)
}
