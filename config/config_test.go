package config_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dkowalski/queuectl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyYieldsDefaults(t *testing.T) {
	c, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxRetries, c.MaxRetries)
	assert.Equal(t, config.DefaultBackoffBase, c.BackoffBase)
	assert.Equal(t, config.DefaultDBPath, c.DBPath)
}

func TestLoadMalformedYieldsErrConfigParse(t *testing.T) {
	c, err := config.Load(strings.NewReader("max_retries: [this is not: valid"))
	require.ErrorIs(t, err, config.ErrConfigParse)
	assert.Equal(t, config.Default(), c)
}

func TestLoadMergesPartialFileWithDefaults(t *testing.T) {
	c, err := config.Load(strings.NewReader("max_retries: 9\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, c.MaxRetries)
	assert.Equal(t, config.DefaultBackoffBase, c.BackoffBase)
}

func TestSetAcceptsHyphenOrUnderscoreAndRoundTrips(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Set("max-retries", "5"))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))
	assert.Contains(t, buf.String(), "max_retries: 5")

	reloaded, err := config.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.MaxRetries)
}

func TestGetReturnsFoundFlag(t *testing.T) {
	c := config.Default()
	v, ok := c.Get("db_path")
	require.True(t, ok)
	assert.Equal(t, config.DefaultDBPath, v)

	_, ok = c.Get("nonexistent")
	assert.False(t, ok)
}

func TestExtraKeysRoundTrip(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Set("custom-flag", "on"))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	reloaded, err := config.Load(&buf)
	require.NoError(t, err)
	v, ok := reloaded.Get("custom_flag")
	require.True(t, ok)
	assert.Equal(t, "on", v)
}

func TestResetDiscardsExtraAndOverrides(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Set("max_retries", "99"))
	require.NoError(t, c.Set("custom", "x"))

	c.Reset()
	assert.Equal(t, config.DefaultMaxRetries, c.MaxRetries)
	assert.Empty(t, c.Extra)
}

func TestLoadFileMissingYieldsDefaultsNoError(t *testing.T) {
	c, err := config.LoadFile("/nonexistent/path/queuectl_config.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestSetRejectsNonIntegerForIntField(t *testing.T) {
	c := config.Default()
	err := c.Set("max_retries", "not-a-number")
	require.Error(t, err)
}
