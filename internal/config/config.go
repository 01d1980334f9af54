package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/agentmodels/pagekit/internal/walker"
)

// EnvPrefix marks environment variables that override file settings.
const EnvPrefix = "PAGEKIT_"

// sections are the nested config blocks; PAGEKIT_MATH_FAIL_FAST
// addresses math.fail_fast.
var sections = []string{"math", "serve"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PAGEKIT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps PAGEKIT_SITE_DIR to site_dir and PAGEKIT_SERVE_PORT to serve.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(key, sec+"_") {
			return sec + "." + strings.TrimPrefix(key, sec+"_")
		}
	}
	return key
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validMathEngines = map[MathEngine]bool{
	MathKaTeX: true,
	MathNone:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return fmt.Errorf("site_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Repository == "" {
		return fmt.Errorf("repository is required")
	}
	if !strings.HasSuffix(c.Repository, "/") {
		return fmt.Errorf("repository %q must end with a slash", c.Repository)
	}
	if c.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if strings.HasPrefix(c.ChaptersPath, "/") {
		return fmt.Errorf("chapters_path %q must be relative to the repository", c.ChaptersPath)
	}
	if c.Bibliography == "" {
		return fmt.Errorf("bibliography is required")
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}
	if _, err := walker.NewFilter(c.Include, c.Exclude); err != nil {
		return fmt.Errorf("invalid glob: %w", err)
	}

	if !validMathEngines[c.Math.Engine] {
		return fmt.Errorf("invalid math.engine %q: must be one of katex, none", c.Math.Engine)
	}
	if c.Math.Engine == MathKaTeX && c.Math.KaTeXScript == "" {
		return fmt.Errorf("math.katex_script is required when math.engine is katex")
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve.port %d", c.Serve.Port)
	}

	return nil
}

// KaTeXScriptPath resolves math.katex_script against the site directory
// unless it is absolute.
func (c *Config) KaTeXScriptPath() string {
	if filepath.IsAbs(c.Math.KaTeXScript) {
		return c.Math.KaTeXScript
	}
	return filepath.Join(c.SiteDir, filepath.FromSlash(c.Math.KaTeXScript))
}
