package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the workspace.
const FileName = "somadev.yml"

// Config models somadev.yml.
type Config struct {
	Server struct {
		Addr         string   `yaml:"addr"`
		BasePath     string   `yaml:"base_path"`
		JWTSecret    string   `yaml:"jwt_secret"`
		AllowOrigins []string `yaml:"allow_origins"`
		ChatRate     float64  `yaml:"chat_rate"`
		ChatBurst    int      `yaml:"chat_burst"`
	} `yaml:"server"`
	Chat struct {
		ReplyDelay    time.Duration `yaml:"reply_delay"`
		ConfirmDelay  time.Duration `yaml:"confirm_delay"`
		RedirectDelay time.Duration `yaml:"redirect_delay"`
		Keywords      []string      `yaml:"keywords"`
	} `yaml:"chat"`
	Canvas struct {
		TickInterval time.Duration `yaml:"tick_interval"`
		Step         int           `yaml:"step"`
	} `yaml:"canvas"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; print a starting point with somadev config show", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	for _, o := range c.Server.AllowOrigins {
		if o == "" {
			return fmt.Errorf("config.server.allow_origins contains an empty origin")
		}
	}
	if c.Server.ChatRate < 0 {
		return fmt.Errorf("config.server.chat_rate must not be negative")
	}
	if c.Server.ChatRate > 0 && c.Server.ChatBurst < 1 {
		return fmt.Errorf("config.server.chat_burst must be at least 1 when chat_rate is set")
	}
	if c.Chat.ReplyDelay < 0 || c.Chat.ConfirmDelay < 0 || c.Chat.RedirectDelay < 0 {
		return fmt.Errorf("config.chat delays must not be negative")
	}
	for _, k := range c.Chat.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("config.chat.keywords contains an empty keyword")
		}
		if k != strings.ToLower(k) {
			return fmt.Errorf("chat keyword %q must be lowercase", k)
		}
	}
	if c.Canvas.TickInterval <= 0 {
		return fmt.Errorf("config.canvas.tick_interval must be positive")
	}
	if c.Canvas.Step <= 0 || c.Canvas.Step > 100 {
		return fmt.Errorf("config.canvas.step must be between 1 and 100")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing
// from data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `server:
  addr: 127.0.0.1:8080
  base_path: /v0
  # Leave empty to serve without authentication.
  jwt_secret: ""
  allow_origins: []
  # Chat submissions per second across all clients; 0 disables the limit.
  chat_rate: 5
  chat_burst: 10

chat:
  reply_delay: 1500ms
  confirm_delay: 5s
  redirect_delay: 2s
  keywords: [criar, app, aplicativo]

canvas:
  tick_interval: 100ms
  step: 2

log:
  level: info
  development: false
`
