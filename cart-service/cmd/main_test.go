package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExitCode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	zlog := zap.New(core)

	assert.Equal(t, 0, exitCode(zlog, nil))
	assert.Zero(t, logs.Len())

	assert.Equal(t, 1, exitCode(zlog, errors.New("redis connection failed")))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "cart service failed", entry.Message)
	assert.Equal(t, "redis connection failed", entry.ContextMap()["error"])
}
