package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
)

const defaultNotifier = "github"

// Config is the top-level configuration for harbinger.
type Config struct {
	RefDir       string                      `yaml:"refdir"`       // Directory holding the version reference files
	NotifyRepo   string                      `yaml:"notify_repo"`  // Target repository as "owner/name"
	Notifier     string                      `yaml:"notifier"`     // Sink type (default "github")
	Token        string                      `yaml:"token"`        // Inline, ${ENV_VAR}, or file path
	Dependencies map[string]DependencyConfig `yaml:"dependencies"` // Keyed by dependency name
}

// DependencyConfig describes how one upstream dependency is checked.
type DependencyConfig struct {
	Plugin string            `yaml:"plugin"` // Checker plugin key ("tarball", "gittags", "github")
	Params map[string]string `yaml:"params"` // Plugin-specific parameters
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variables
// and resolving token file paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Token = ResolveToken(cfg.Token)
	if cfg.Notifier == "" {
		cfg.Notifier = defaultNotifier
	}

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".harbinger.yaml",
		".harbinger.yml",
		"harbinger.yaml",
		"harbinger.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// DependencyList returns the configured dependencies as domain entities,
// sorted by name so batch runs process them in a stable order.
func (c *Config) DependencyList() []entities.Dependency {
	deps := make([]entities.Dependency, 0, len(c.Dependencies))
	for name, depCfg := range c.Dependencies {
		deps = append(deps, entities.Dependency{
			Name:   name,
			Plugin: depCfg.Plugin,
			Params: depCfg.Params,
		})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values. A dependency without an
// explicit plugin key is rejected here; there is deliberately no name-derived
// plugin fallback.
func validate(cfg *Config) error {
	if cfg.RefDir == "" {
		return errors.New("refdir is required")
	}
	if cfg.NotifyRepo == "" {
		return errors.New("notify_repo is required")
	}
	if !strings.Contains(cfg.NotifyRepo, "/") {
		return fmt.Errorf("notify_repo %q must be of the form \"owner/name\"", cfg.NotifyRepo)
	}
	if len(cfg.Dependencies) == 0 {
		return errors.New("at least one dependency must be configured")
	}

	for name, dep := range cfg.Dependencies {
		if dep.Plugin == "" {
			return fmt.Errorf("dependencies[%q].plugin is required", name)
		}
	}

	return nil
}
