package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welcometomycity/citycore/internal/config"
	"go.uber.org/zap"
)

func TestOpenEmbedded(t *testing.T) {
	cfg := config.Default()

	rt, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Pool)
	assert.Equal(t, "memory", rt.Cache.Backend())
	assert.True(t, rt.Store.HasTransit("kolkata"))
	assert.False(t, rt.Places.Configured())
}
