package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("ARTVAULT_GRPC_ADDR", ":7000")
	t.Setenv("ARTVAULT_PRESIGN_TTL", "2m")
	t.Setenv("ARTVAULT_MAX_CHUNKS", "16")
	t.Setenv("ARTVAULT_MIN_ORIGINALITY", "75")
	t.Setenv("ARTVAULT_ALLOWED_MEDIA_TYPES", "image/png,image/gif")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":7000", c.EndpointAddrGRPC)
	assert.Equal(t, 2*time.Minute, c.PresignTTL)
	assert.Equal(t, 16, c.MaxChunks)
	assert.Equal(t, uint16(75), c.MinOriginality)
	assert.Equal(t, []string{"image/png", "image/gif"}, c.AllowedMediaTypes)
	assert.Equal(t, ":9090", c.MetricsAddr)
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Setenv("ARTVAULT_MAX_CHUNKS", "lots")

	c := &Config{}
	assert.Error(t, parseEnv(c))
}
