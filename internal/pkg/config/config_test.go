package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromYaml(t *testing.T) {
	content := `
service:
  name: item-service
  port: 9000
infra:
  redis:
    addr: redis:6379
stock:
  lockProvider: zookeeper
  lockWaitTimeout: 1s
  lockHoldTimeout: 2s
  admissionRules:
    - "quantity > 0"
stockWatch:
  port: 9100
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, Load(path))
	cfg := GetCurrentConfig()

	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, "redis:6379", cfg.Infra.Redis.Addr)
	assert.Equal(t, "zookeeper", cfg.Stock.LockProvider)
	assert.Equal(t, time.Second, cfg.Stock.LockWaitTimeout.Std())
	assert.Equal(t, []string{"quantity > 0"}, cfg.Stock.AdmissionRules)
	assert.Equal(t, 9100, cfg.StockWatch.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REDIS_ADDR", "override:6379")
	t.Setenv("LOCK_PROVIDER", "local")

	require.NoError(t, Load(""))
	cfg := GetCurrentConfig()

	assert.Equal(t, "override:6379", cfg.Infra.Redis.Addr)
	assert.Equal(t, "local", cfg.Stock.LockProvider)
}

func TestLoad_MissingFileFails(t *testing.T) {
	require.Error(t, Load("/nonexistent/config.yaml"))
}
