package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "taskboard"
	configFile = "config.yaml"
)

type APIConfig struct {
	BaseURL      string        `yaml:"base_url" env:"TASKBOARD_API_URL" env-default:"http://localhost:8000"`
	Timeout      time.Duration `yaml:"timeout" env:"TASKBOARD_API_TIMEOUT" env-default:"10s"`
	SmartTimeout time.Duration `yaml:"smart_timeout" env:"TASKBOARD_SMART_TIMEOUT" env-default:"60s"`
}

type CalendarConfig struct {
	Name string `yaml:"name" env:"TASKBOARD_CALENDAR" env-default:"Tasks"`
}

type Config struct {
	LogLevel string         `yaml:"log_level" env:"TASKBOARD_LOG_LEVEL" env-default:"INFO"`
	API      APIConfig      `yaml:"api"`
	Calendar CalendarConfig `yaml:"calendar"`
	Home     string         `yaml:"home" env:"TASKBOARD_HOME"`

	// Path is the file the config was read from and is saved to.
	Path string `yaml:"-"`
}

// DefaultPath is ~/.config/taskboard/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}

// Load reads a .env file from the working directory if present, then the
// config file at path, then the environment. A missing file falls back to
// the environment and defaults. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{Path: path}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	}
	cfg.Path = path
	return cfg, nil
}

// Dir is where taskboard keeps its state: credentials, token, palette and
// event index.
func (c *Config) Dir() string {
	if c.Home != "" {
		return c.Home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appName)
	}
	return filepath.Dir(c.Path)
}

func (c *Config) PalettePath() string { return filepath.Join(c.Dir(), "palette.json") }

func (c *Config) IndexPath() string { return filepath.Join(c.Dir(), "events.json") }

// SetCalendar records name as the default calendar in the file at c.Path.
// Only calendar.name is touched: other keys, comments and anything that
// came from the environment stay out of the write.
func (c *Config) SetCalendar(name string) error {
	if c.Path == "" {
		return errors.New("config has no path")
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var doc yaml.Node
	b, err := os.ReadFile(c.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("cannot parse config %q: %w", c.Path, err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config %q is not a mapping", c.Path)
	}

	calendar := mappingValue(root, "calendar", yaml.MappingNode)
	if calendar.Kind != yaml.MappingNode {
		*calendar = yaml.Node{Kind: yaml.MappingNode}
	}
	*mappingValue(calendar, "name", yaml.ScalarNode) = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(c.Path, out, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.Calendar.Name = name
	return nil
}

// mappingValue returns the value node for key, appending an empty one of
// the given kind when the key is absent.
func mappingValue(m *yaml.Node, key string, kind yaml.Kind) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	v := &yaml.Node{Kind: kind}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	return v
}
