package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "github.com/PraveenHasintha/inventra-backend/internal/core/context"
)

func TestFromContext_AddsRequestAndUserFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := NewFromZap(zap.New(core))

	ctx := WithLogger(context.Background(), base)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-1"})

	Info(ctx, "stock received", "quantity", 10)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "stock received", entry.Message)
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, int64(10), fields["quantity"])
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFromZap(zap.New(core)).WithComponent("worker")

	l.Infow("tick")
	l.Debugw("hidden")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "worker", logs.All()[0].ContextMap()["component"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestBuildConfig_ProductionUsesISO8601Timestamps(t *testing.T) {
	enc := zapcore.NewJSONEncoder(buildConfig(false).EncoderConfig)
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		Message: "ready",
	}, nil)
	require.NoError(t, err)
	defer buf.Free()

	assert.Contains(t, buf.String(), `"ts":"2026-10-14T09:30:00.000Z"`)
}

func TestSetDefault_ConcurrentWithDefault(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	replacement := NewFromZap(zap.New(core))
	t.Cleanup(func() { defaultLogger.Store(nil) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetDefault(replacement)
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, Default())
		}()
	}
	wg.Wait()

	assert.Same(t, replacement, Default())
	Info(context.Background(), "after swap")
	assert.Equal(t, 1, logs.FilterMessage("after swap").Len())
}
