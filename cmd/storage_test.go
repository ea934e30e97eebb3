package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/sqlitegui/internal/logging"
)

func TestAppsShareGlobalLogger(t *testing.T) {
	env := newTestEnv(t)

	first, _, _ := env.open(t)
	second, _, _ := env.open(t)

	assert.Same(t, logging.GetLogger(), first.logger)
	assert.Same(t, first.logger, second.logger)

	require.NoError(t, first.Close())
	assert.NoError(t, logging.LoggerMiddleware("after close", func() error { return nil }))
}
