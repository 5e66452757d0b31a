package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("parses a TOML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		data := `[credentials.spotify]
client_id = "file-id"
client_secret = "file-secret"
redirect_uri = "http://localhost:8888/callback"

[server]
host = "127.0.0.1"
port = 9999

[pacing]
requests_per_second = 2.5
penalty_ms = 2000
`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Credentials.Spotify.ClientID != "file-id" {
			t.Errorf("unexpected client id %q", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Addr() != "127.0.0.1:9999" {
			t.Errorf("unexpected address %q", config.Server.Addr())
		}
		if config.Pacing.RequestsPerSecond != 2.5 || config.Pacing.PenaltyMS != 2000 {
			t.Errorf("unexpected pacing %+v", config.Pacing)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("credentials = [unterminated"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		data := `[credentials.spotify]
client_id = "file-id"

[server]
host = "localhost"
port = 8888
`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
		t.Setenv("PORT", "7777")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected env override, got %q", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 7777 {
			t.Errorf("expected env port, got %d", config.Server.Port)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Server.Port == 0 {
		t.Error("expected a default port")
	}
	if config.Pacing.RequestsPerSecond <= 0 {
		t.Error("expected a default pacing rate")
	}
}

func TestSpotifyConfigMap(t *testing.T) {
	creds := SpotifyConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "uri"}.Map()
	if creds["client_id"] != "id" || creds["client_secret"] != "secret" || creds["redirect_uri"] != "uri" {
		t.Errorf("unexpected credential map %v", creds)
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("writes the example config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := LoadConfig(path); err != nil {
			t.Errorf("generated config should parse: %v", err)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})
}

func TestLoadDotenv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("loads variables into the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("SETLIST_DOTENV_PROBE=loaded\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Setenv("SETLIST_DOTENV_PROBE", "")
		os.Unsetenv("SETLIST_DOTENV_PROBE")

		if err := LoadDotenv(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := os.Getenv("SETLIST_DOTENV_PROBE"); got != "loaded" {
			t.Errorf("expected variable loaded, got %q", got)
		}
	})
}
