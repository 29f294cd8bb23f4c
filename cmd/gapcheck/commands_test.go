package main

import (
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapcheck/internal/domain"
)

func TestParseFormats(t *testing.T) {
	formats, err := parseFormats("pdf, JSON,,xlsx")
	require.NoError(t, err)
	assert.Equal(t, []domain.ExportFormat{domain.ExportPDF, domain.ExportJSON, domain.ExportXLSX}, formats)

	formats, err = parseFormats("")
	require.NoError(t, err)
	assert.Empty(t, formats)

	_, err = parseFormats("pdf,docx")
	var uerr usageError
	assert.True(t, errors.As(err, &uerr))
}

func TestSessionArg(t *testing.T) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	require.NoError(t, fs.Parse([]string{"a1b2c3d4"}))
	id, err := sessionArg(fs)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4", id)

	fs = flag.NewFlagSet("report", flag.ContinueOnError)
	require.NoError(t, fs.Parse(nil))
	_, err = sessionArg(fs)
	assert.Error(t, err)
}
