package redact_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeep/redact"
)

func TestNewLogger_RedactsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := redact.NewLogger(&buf, nil)

	logger.Info("login attempt email=bob@dylan.com;password=bobby2019;")

	out := buf.String()
	assert.Contains(t, out, "email=***;")
	assert.Contains(t, out, "password=***;")
	assert.NotContains(t, out, "bob@dylan.com")
	assert.NotContains(t, out, "bobby2019")
}

func TestNewLogger_MetadataUntouched(t *testing.T) {
	var buf bytes.Buffer
	logger := redact.NewLogger(&buf, []string{"ssn"})

	logger.Warn("ssn=000-12-0000;", "request_id", "r-42")

	out := buf.String()
	require.True(t, strings.Contains(out, "level=WARN"), "level should render: %s", out)
	assert.Contains(t, out, "time=")
	assert.Contains(t, out, "request_id=r-42")
	assert.Contains(t, out, "ssn=***;")
}

func TestNewLogger_PlainMessagePassesThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := redact.NewLogger(&buf, nil)

	logger.Info("starting server", "addr", ":8080")

	out := buf.String()
	assert.Contains(t, out, "starting server")
	assert.Contains(t, out, "addr=:8080")
}

func TestHandler_WithAttrsKeepsRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := redact.NewLogger(&buf, nil).With("component", "handlers")

	logger.Info("password=hunter2;")

	out := buf.String()
	assert.Contains(t, out, "component=handlers")
	assert.Contains(t, out, "password=***;")
	assert.NotContains(t, out, "hunter2")
}
