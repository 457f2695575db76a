package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevColor := Out, color.NoColor
	Out, color.NoColor = &buf, true
	t.Cleanup(func() { Out, color.NoColor = prevOut, prevColor })
	return &buf
}

func TestTable_AlignsRunes(t *testing.T) {
	buf := captureOut(t)

	Table([]string{"ID", "NAME"}, [][]string{
		{"api_gateway", "API Gateway ☁️"},
		{"crm", "CRM"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  ID           NAME", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  ───────────  "))
	assert.Equal(t, "  crm          CRM", lines[3])
}

func TestTable_EmptyPrintsNothing(t *testing.T) {
	buf := captureOut(t)
	Table([]string{"ID"}, nil)
	assert.Empty(t, buf.String())
}

func TestStatusIcon(t *testing.T) {
	captureOut(t)
	assert.Equal(t, "✓", StatusIcon(true))
	assert.Equal(t, "✗", StatusIcon(false))
}
