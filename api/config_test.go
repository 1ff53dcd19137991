package api

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), config)
	require.Equal(t, slog.LevelInfo, config.SlogLevel())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
port = "9090"
max_file_size = 2048
log_level = "debug"

[background_remover]
tolerance = 10
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "9090", config.Port)
	require.EqualValues(t, 2048, config.MaxFileSize)
	require.EqualValues(t, DefaultMaxLogoSize, config.MaxLogoSize)
	require.Equal(t, 10, config.BackgroundRemover.Tolerance)
	require.Equal(t, DefaultBackgroundRemoverTimeout, config.BackgroundRemover.TimeoutSeconds)
	require.Equal(t, slog.LevelDebug, config.SlogLevel())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `port = "9090"`)
	t.Setenv("PORT", "7070")
	t.Setenv("MAX_LOGO_SIZE", "1024")
	t.Setenv("BG_REMOVER_TIMEOUT", "not-a-number")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "7070", config.Port)
	require.EqualValues(t, 1024, config.MaxLogoSize)
	require.Equal(t, DefaultBackgroundRemoverTimeout, config.BackgroundRemover.TimeoutSeconds)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed toml", body: `port = `},
		{name: "negative file size", body: `max_file_size = -1`},
		{name: "tolerance too large", body: "[background_remover]\ntolerance = 300"},
		{name: "zero logo size from env", env: map[string]string{"MAX_LOGO_SIZE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}
			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestConfig_SlogLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		config := &Config{LogLevel: in}
		require.Equal(t, want, config.SlogLevel(), in)
	}
}

func TestNewService_CommandRemoverMustExist(t *testing.T) {
	config := DefaultConfig()
	config.TempDir = t.TempDir()
	config.BackgroundRemover.Command = "definitely-not-a-real-bg-remover {input} {output}"

	_, err := NewService(config, slog.Default())
	require.Error(t, err)
}
