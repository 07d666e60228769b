package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	t.Run("ServerSettings", func(t *testing.T) {
		assert.Equal(t, "8080", cfg.Server.HTTPPort)
		// The request timeout middleware reads this value; keep it parsed.
		assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	})

	t.Run("JWTExpiryDefaultsToFourHours", func(t *testing.T) {
		assert.Equal(t, 4*time.Hour, cfg.JWT.Expiry)
	})

	t.Run("MetricsPort", func(t *testing.T) {
		assert.Equal(t, "9090", cfg.Metrics.Port)
	})
}
