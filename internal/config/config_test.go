package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "VCAP_APP_PORT", "STATIC_DIR", "LOG_LEVEL", "WORKSPACE_ID",
	"CONVERSATION_BACKEND", "BACKEND_TIMEOUT", "CONVERSATION_URL", "CONVERSATION_USERNAME",
	"CONVERSATION_PASSWORD", "CONVERSATION_APIKEY", "CONVERSATION_VERSION_DATE",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "METRICS_ENABLED",
	"RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS", "VCAP_SERVICES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func withWatsonCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("CONVERSATION_USERNAME", "user")
	t.Setenv("CONVERSATION_PASSWORD", "pass")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	withWatsonCredentials(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.ServerPort)
	require.Equal(t, BackendWatson, cfg.Backend)
	require.Equal(t, defaultConversationURL, cfg.ConversationURL)
	require.Equal(t, defaultConversationVersion, cfg.ConversationVersion)
	require.Equal(t, 10*time.Second, cfg.BackendTimeout)
	require.Equal(t, "", cfg.WorkspaceID)
	require.True(t, cfg.MetricsEnabled)
	require.Equal(t, 120, cfg.RateLimitPerMinute)
	require.Empty(t, cfg.CORSAllowedOrigins)

	want := Default()
	want.ConversationUsername = "user"
	want.ConversationPassword = "pass"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_PortFallback(t *testing.T) {
	tests := []struct {
		name        string
		port        string
		vcapAppPort string
		want        string
	}{
		{name: "default", want: "3000"},
		{name: "vcap app port", vcapAppPort: "6001", want: "6001"},
		{name: "port wins", port: "8080", vcapAppPort: "6001", want: "8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			withWatsonCredentials(t)
			t.Setenv("PORT", tt.port)
			t.Setenv("VCAP_APP_PORT", tt.vcapAppPort)

			cfg, err := LoadConfig(nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, cfg.ServerPort)
		})
	}
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	withWatsonCredentials(t)
	t.Setenv("WORKSPACE_ID", "from-env")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig([]string{
		"-workspace-id", "from-flag",
		"-backend-timeout", "3s",
		"-cors-origins", "http://a.test, http://b.test",
		"-metrics=false",
		"-rate-limit", "0",
	})
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.WorkspaceID)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, 3*time.Second, cfg.BackendTimeout)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	require.False(t, cfg.MetricsEnabled)
	require.Equal(t, 0, cfg.RateLimitPerMinute)
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "4000"
workspace_id: from-file
backend: openai
backend_timeout: 5s
openai_api_key: sk-file
openai_model: gpt-4.1
rate_limit_per_minute: 30
cors_allowed_origins:
  - http://localhost:5173
`), 0o600))

	t.Setenv("OPENAI_MODEL", "gpt-from-env")

	cfg, err := LoadConfig([]string{"-config", path})
	require.NoError(t, err)
	require.Equal(t, "4000", cfg.ServerPort)
	require.Equal(t, "from-file", cfg.WorkspaceID)
	require.Equal(t, BackendOpenAI, cfg.Backend)
	require.Equal(t, 5*time.Second, cfg.BackendTimeout)
	require.Equal(t, "sk-file", cfg.OpenAIAPIKey)
	require.Equal(t, "gpt-from-env", cfg.OpenAIModel)
	require.Equal(t, 30, cfg.RateLimitPerMinute)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	clearEnv(t)
	withWatsonCredentials(t)

	_, err := LoadConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o600))
	_, err = LoadConfig([]string{"-config", path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_VCAPServices(t *testing.T) {
	clearEnv(t)
	t.Setenv("VCAP_SERVICES", `{
		"conversation": [{
			"name": "conversation-service",
			"credentials": {
				"url": "https://gateway-fra.watsonplatform.net/conversation/api",
				"username": "vcap-user",
				"password": "vcap-pass"
			}
		}]
	}`)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	require.Equal(t, "https://gateway-fra.watsonplatform.net/conversation/api", cfg.ConversationURL)
	require.Equal(t, "vcap-user", cfg.ConversationUsername)
	require.Equal(t, "vcap-pass", cfg.ConversationPassword)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		errContains string
	}{
		{
			name:        "watson without credentials",
			errContains: "watson credentials are required",
		},
		{
			name:        "openai without key",
			env:         map[string]string{"CONVERSATION_BACKEND": "openai"},
			errContains: "OPENAI_API_KEY is required",
		},
		{
			name:        "unknown backend",
			env:         map[string]string{"CONVERSATION_BACKEND": "dialogflow"},
			errContains: "unknown conversation backend",
		},
		{
			name:        "non-positive timeout",
			env:         map[string]string{"CONVERSATION_APIKEY": "key"},
			args:        []string{"-backend-timeout", "0s"},
			errContains: "backend timeout must be positive",
		},
		{
			name:        "negative rate limit",
			env:         map[string]string{"CONVERSATION_APIKEY": "key"},
			args:        []string{"-rate-limit", "-1"},
			errContains: "must not be negative",
		},
		{
			name:        "invalid port",
			env:         map[string]string{"CONVERSATION_APIKEY": "key", "PORT": "http"},
			errContains: "invalid server port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(tt.args)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestSplitList(t *testing.T) {
	require.Nil(t, splitList(""))
	require.Equal(t, []string{"a", "b"}, splitList(" a , ,b "))
}
