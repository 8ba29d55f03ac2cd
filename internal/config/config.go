package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	BackendWatson = "watson"
	BackendOpenAI = "openai"

	defaultConversationURL     = "https://gateway.watsonplatform.net/conversation/api"
	defaultConversationVersion = "2017-04-21"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `yaml:"port"`
	StaticDir  string `yaml:"static_dir"`
	LogLevel   string `yaml:"log_level"`

	// Conversation configuration
	WorkspaceID    string        `yaml:"workspace_id"`
	Backend        string        `yaml:"backend"`
	BackendTimeout time.Duration `yaml:"backend_timeout"`

	// Watson configuration
	ConversationURL      string `yaml:"conversation_url"`
	ConversationUsername string `yaml:"conversation_username"`
	ConversationPassword string `yaml:"conversation_password"`
	ConversationAPIKey   string `yaml:"conversation_apikey"`
	ConversationVersion  string `yaml:"conversation_version"`

	// OpenAI configuration
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// HTTP middleware configuration
	MetricsEnabled     bool     `yaml:"metrics_enabled"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		ServerPort:          "3000",
		StaticDir:           "./public",
		LogLevel:            "info",
		Backend:             BackendWatson,
		BackendTimeout:      10 * time.Second,
		ConversationURL:     defaultConversationURL,
		ConversationVersion: defaultConversationVersion,
		OpenAIModel:         "gpt-4.1-mini",
		MetricsEnabled:      true,
		RateLimitPerMinute:  120,
	}
}

// LoadConfig loads configuration from an optional YAML file, environment
// variables (a .env file is loaded first when present) and command-line flags.
// Flags take precedence over environment variables, which take precedence
// over the file.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	// Define flags
	configFile := fs.String("config", os.Getenv("CONFIG_FILE"), "Path to a YAML configuration file")
	port := fs.String("port", "", "Server port")
	staticDir := fs.String("static-dir", "", "Directory with static web assets (empty disables)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	workspaceID := fs.String("workspace-id", "", "Conversation workspace id")
	backend := fs.String("backend", "", "Conversation backend (watson or openai)")
	backendTimeout := fs.Duration("backend-timeout", 0, "Timeout for conversation backend calls")
	conversationURL := fs.String("conversation-url", "", "Watson Conversation service URL")
	conversationUsername := fs.String("conversation-username", "", "Watson Conversation username")
	conversationPassword := fs.String("conversation-password", "", "Watson Conversation password")
	conversationAPIKey := fs.String("conversation-apikey", "", "Watson Conversation IAM API key")
	conversationVersion := fs.String("conversation-version", "", "Watson Conversation API version date")
	openAIKey := fs.String("openai-key", "", "OpenAI API key")
	openAIModel := fs.String("openai-model", "", "OpenAI model for chat completions")
	openAIBaseURL := fs.String("openai-base-url", "", "OpenAI-compatible API base URL")
	metricsEnabled := fs.Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	rateLimit := fs.Int("rate-limit", 0, "Requests per minute per client on /api (0 disables)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated list of allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	if *configFile != "" {
		if err := loadFile(*configFile, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	// Explicitly set flags override everything else
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.ServerPort = *port
		case "static-dir":
			cfg.StaticDir = *staticDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "workspace-id":
			cfg.WorkspaceID = *workspaceID
		case "backend":
			cfg.Backend = *backend
		case "backend-timeout":
			cfg.BackendTimeout = *backendTimeout
		case "conversation-url":
			cfg.ConversationURL = *conversationURL
		case "conversation-username":
			cfg.ConversationUsername = *conversationUsername
		case "conversation-password":
			cfg.ConversationPassword = *conversationPassword
		case "conversation-apikey":
			cfg.ConversationAPIKey = *conversationAPIKey
		case "conversation-version":
			cfg.ConversationVersion = *conversationVersion
		case "openai-key":
			cfg.OpenAIAPIKey = *openAIKey
		case "openai-model":
			cfg.OpenAIModel = *openAIModel
		case "openai-base-url":
			cfg.OpenAIBaseURL = *openAIBaseURL
		case "metrics":
			cfg.MetricsEnabled = *metricsEnabled
		case "rate-limit":
			if *rateLimit < 0 {
				flagErr = fmt.Errorf("rate-limit must not be negative")
			}
			cfg.RateLimitPerMinute = *rateLimit
		case "cors-origins":
			cfg.CORSAllowedOrigins = splitList(*corsOrigins)
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if cfg.Backend == BackendWatson && !cfg.hasWatsonCredentials() {
		applyVCAPServices(cfg, os.Getenv("VCAP_SERVICES"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected backend can be constructed
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWatson:
		if !c.hasWatsonCredentials() {
			return fmt.Errorf("watson credentials are required (set CONVERSATION_USERNAME and CONVERSATION_PASSWORD, CONVERSATION_APIKEY, or VCAP_SERVICES)")
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai backend (set via environment variable or -openai-key flag)")
		}
	default:
		return fmt.Errorf("unknown conversation backend %q (want %q or %q)", c.Backend, BackendWatson, BackendOpenAI)
	}

	if c.BackendTimeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.BackendTimeout)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimitPerMinute)
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid server port %q", c.ServerPort)
	}
	return nil
}

func (c *Config) hasWatsonCredentials() bool {
	return c.ConversationAPIKey != "" || (c.ConversationUsername != "" && c.ConversationPassword != "")
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	// Cloud Foundry sets VCAP_APP_PORT on older stacks
	cfg.ServerPort = getEnv("PORT", getEnv("VCAP_APP_PORT", cfg.ServerPort))
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.WorkspaceID = getEnv("WORKSPACE_ID", cfg.WorkspaceID)
	cfg.Backend = getEnv("CONVERSATION_BACKEND", cfg.Backend)
	cfg.BackendTimeout = getEnvAsDuration("BACKEND_TIMEOUT", cfg.BackendTimeout)
	cfg.ConversationURL = getEnv("CONVERSATION_URL", cfg.ConversationURL)
	cfg.ConversationUsername = getEnv("CONVERSATION_USERNAME", cfg.ConversationUsername)
	cfg.ConversationPassword = getEnv("CONVERSATION_PASSWORD", cfg.ConversationPassword)
	cfg.ConversationAPIKey = getEnv("CONVERSATION_APIKEY", cfg.ConversationAPIKey)
	cfg.ConversationVersion = getEnv("CONVERSATION_VERSION_DATE", cfg.ConversationVersion)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.MetricsEnabled = getEnvAsBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.RateLimitPerMinute = getEnvAsInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
}

// applyVCAPServices fills Watson credentials from a Cloud Foundry service binding
func applyVCAPServices(cfg *Config, vcap string) {
	if vcap == "" {
		return
	}
	creds := gjson.Get(vcap, "conversation.0.credentials")
	if !creds.Exists() {
		return
	}
	if v := creds.Get("url").String(); v != "" {
		cfg.ConversationURL = v
	}
	cfg.ConversationUsername = creds.Get("username").String()
	cfg.ConversationPassword = creds.Get("password").String()
	cfg.ConversationAPIKey = creds.Get("apikey").String()
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
