package errreport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/classbot/core/logger"
)

func TestDisabledWithoutDSN(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.False(t, Enabled())

	// no-ops must not panic without a client
	Capture(context.Background(), errors.New("boom"))
	Recover(context.Background(), "panic value")
	assert.True(t, Flush(10*time.Millisecond))
}

func TestInitRejectsMalformedDSN(t *testing.T) {
	err := Init(Options{DSN: "not a dsn"})
	require.Error(t, err)
	assert.False(t, Enabled())
}

func TestTagsFromContext(t *testing.T) {
	ctx := logger.WithRID(context.Background(), "1:2:3")
	ctx = logger.WithTrace(ctx, "abc")
	ctx = logger.WithHandler(ctx, "text")

	assert.Equal(t, map[string]string{
		"rid":      "1:2:3",
		"trace_id": "abc",
		"handler":  "text",
	}, tags(ctx))
	assert.Empty(t, tags(context.Background()))
}
