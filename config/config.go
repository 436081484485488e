// Package config handles loading and validating the application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the tutor server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Audio    AudioConfig    `mapstructure:"audio"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// DatabaseConfig holds the embedded store settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AudioConfig holds the reply-audio artifact settings.
type AudioConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// OpenAIConfig holds the LLM provider settings.
type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	ChatModel          string `mapstructure:"chat_model"`
	FeedbackModel      string `mapstructure:"feedback_model"`
	TranscriptionModel string `mapstructure:"transcription_model"`
}

// TTSConfig holds the speech-synthesis provider settings.
type TTSConfig struct {
	ElevenLabsAPIKey string `mapstructure:"elevenlabs_api_key"`
	ModelID          string `mapstructure:"model_id"`
	DefaultVoiceID   string `mapstructure:"default_voice_id"`
}

// LoggingConfig selects the logging backend.
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"` // "development" or "production"
	Level string `mapstructure:"level"`
}

// Load reads the optional lingokit.yaml config file and environment variables
// (prefix LINGOKIT_, plus the conventional provider key names) into a Config.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.listen_addr", ":8000")
	v.SetDefault("database.path", "data/lingokit.db")
	v.SetDefault("audio.output_dir", "static/audio")
	v.SetDefault("audio.url_prefix", "/static/audio")
	v.SetDefault("openai.chat_model", "gpt-4o")
	v.SetDefault("openai.feedback_model", "gpt-4o")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("tts.model_id", "eleven_flash_v2_5")
	v.SetDefault("logging.mode", "development")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("lingokit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/lingokit")

	v.SetEnvPrefix("LINGOKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys are conventionally set under their own names.
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("tts.elevenlabs_api_key", "ELEVENLABS_API_KEY")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("audio.output_dir", "AUDIO_OUTPUT_DIR")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the config can run a server at all. Provider keys are
// validated lazily by the services that need them.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Audio.OutputDir == "" {
		return fmt.Errorf("audio.output_dir must not be empty")
	}
	switch c.Logging.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("logging.mode must be development or production, got %q", c.Logging.Mode)
	}
	return nil
}
