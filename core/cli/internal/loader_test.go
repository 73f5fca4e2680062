package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/logger"
)

func TestParseTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T00:00:00Z", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"1700000000000", time.UnixMilli(1_700_000_000_000)},
		{"-24h", now.Add(-24 * time.Hour)},
		{"now", now},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in, now)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	_, err := ParseTime("yesterday", now)
	assert.Error(t, err)
}

func TestParseWhere(t *testing.T) {
	c, err := ParseWhere("country:in:US,UK")
	require.NoError(t, err)
	assert.Equal(t, `country IN ("US","UK")`, c.String())

	c, err = ParseWhere("value:>=:10")
	require.NoError(t, err)
	assert.Equal(t, domain.OpGte, c.Operator())
	assert.Equal(t, []any{int64(10)}, c.Values())

	c, err = ParseWhere("active:eq:true")
	require.NoError(t, err)
	assert.Equal(t, []any{true}, c.Values())

	c, err = ParseWhere("reading:in:nan,inf,1.5")
	require.NoError(t, err)
	assert.Equal(t, []any{"nan", "inf", 1.5}, c.Values())

	_, err = ParseWhere("country:in")
	assert.Error(t, err)

	_, err = ParseWhere("country:like:US")
	assert.Error(t, err)
}

func TestParseArgument(t *testing.T) {
	k, v, err := ParseArgument("x_axis=custom_x_axis")
	require.NoError(t, err)
	assert.Equal(t, "x_axis", k)
	assert.Equal(t, "custom_x_axis", v)

	_, _, err = ParseArgument("novalue")
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{"1", " 22"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 22}, ids)

	_, err = ParseIDs([]string{"0"})
	assert.Error(t, err)
}

func TestResolveLogLevel(t *testing.T) {
	cfg := &config.Config{LogLevel: "info"}

	level, err := ResolveLogLevel(true, "error", cfg)
	require.NoError(t, err)
	assert.Equal(t, logger.LogLevelDebug, level)

	level, err = ResolveLogLevel(false, "error", cfg)
	require.NoError(t, err)
	assert.Equal(t, logger.LogLevelError, level)

	level, err = ResolveLogLevel(false, "", cfg)
	require.NoError(t, err)
	assert.Equal(t, logger.LogLevelInfo, level)

	level, err = ResolveLogLevel(false, "", nil)
	require.NoError(t, err)
	assert.Equal(t, logger.LogLevelWarn, level)
}
