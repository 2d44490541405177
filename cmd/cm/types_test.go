package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/cm/internal/emoji"
)

func TestTypesCommandListsEveryType(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := createTypesCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	entries := emoji.Entries()
	require.Len(t, lines, len(entries))
	for i, e := range entries {
		assert.Contains(t, lines[i], e.Glyph)
		assert.Contains(t, lines[i], e.Type)
		assert.Contains(t, lines[i], e.Description)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := createVersionCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.True(t, strings.HasPrefix(buf.String(), "cm "+version+" ("))
}
