package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresWebhookToken(t *testing.T) {
	t.Setenv("GLRV_GITLAB_WEBHOOK_TOKEN", "")

	_, err := Load()
	require.ErrorContains(t, err, "GLRV_GITLAB_WEBHOOK_TOKEN")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GLRV_GITLAB_WEBHOOK_TOKEN", "hook-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	require.Equal(t, DefaultDBPort, cfg.DBPort)
	require.Equal(t, DefaultOpenAIMaxTurns, cfg.OpenAIMaxTurns)
	require.Equal(t, DefaultWorkerCount, cfg.WorkerCount)
	require.Equal(t, DefaultSubmitTimeout, cfg.WorkerSubmitTimeout)
	require.False(t, cfg.EnableEmail)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GLRV_GITLAB_WEBHOOK_TOKEN", "hook-secret")
	t.Setenv("GLRV_LISTEN_ADDR", ":9090")
	t.Setenv("GLRV_OPENAI_MAX_TURNS", "5")
	t.Setenv("GLRV_WORKER_SUBMIT_TIMEOUT", "250ms")
	t.Setenv("GLRV_ENABLE_EMAIL", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, 5, cfg.OpenAIMaxTurns)
	require.Equal(t, "250ms", cfg.WorkerSubmitTimeout.String())
	require.True(t, cfg.EnableEmail)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("GLRV_GITLAB_WEBHOOK_TOKEN", "hook-secret")
	t.Setenv("GLRV_DB_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultDBPort, cfg.DBPort)
}
