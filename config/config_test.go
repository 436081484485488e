package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.ListenAddr)
	assert.Equal(t, "data/lingokit.db", cfg.Database.Path)
	assert.Equal(t, "static/audio", cfg.Audio.OutputDir)
	assert.Equal(t, "/static/audio", cfg.Audio.URLPrefix)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, "whisper-1", cfg.OpenAI.TranscriptionModel)
	assert.Equal(t, "eleven_flash_v2_5", cfg.TTS.ModelID)
	assert.Equal(t, "development", cfg.Logging.Mode)
}

func TestLoad_ProviderKeysFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")
	t.Setenv("LINGOKIT_SERVER_LISTEN_ADDR", ":9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "el-test", cfg.TTS.ElevenLabsAPIKey)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
}

func TestValidate_RejectsBadLoggingMode(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{ListenAddr: ":8000"},
		Database: DatabaseConfig{Path: "x.db"},
		Audio:    AudioConfig{OutputDir: "out"},
		Logging:  LoggingConfig{Mode: "verbose"},
	}
	assert.Error(t, cfg.Validate())
}
