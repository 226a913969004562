package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), l.With("request_id", "abc"))
	Info(ctx, "sale created", "sale_id", "s-1")
	Debug(ctx, "not recorded")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "sale created", entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, "abc", fields["request_id"])
		assert.Equal(t, "s-1", fields["sale_id"])
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
