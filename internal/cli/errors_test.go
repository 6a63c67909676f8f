package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageError(t *testing.T) {
	err := NewUsageError("unknown flag --%s", "frobnicate")
	assert.Equal(t, "unknown flag --frobnicate", err.Error())

	var uerr *UsageError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &uerr))
}

func TestParseOutputFormat(t *testing.T) {
	format, err := ParseOutputFormat("table")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatTable, format)

	format, err = ParseOutputFormat("json")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatJSON, format)

	_, err = ParseOutputFormat("yaml")
	require.Error(t, err)

	var uerr *UsageError
	assert.True(t, errors.As(err, &uerr))
	assert.Contains(t, err.Error(), "yaml")
}
