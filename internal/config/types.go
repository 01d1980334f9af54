package config

// MathEngine selects how math/tex fragments are typeset.
type MathEngine string

const (
	MathKaTeX MathEngine = "katex"
	MathNone  MathEngine = "none"
)

// Config is the top-level pagekit configuration, corresponding to .pagekit.yml.
type Config struct {
	Title          string      `yaml:"title" koanf:"title"`
	SiteDir        string      `yaml:"site_dir" koanf:"site_dir"`
	OutputDir      string      `yaml:"output_dir" koanf:"output_dir"`
	ChaptersDir    string      `yaml:"chapters_dir" koanf:"chapters_dir"`
	Repository     string      `yaml:"repository" koanf:"repository"`
	Branch         string      `yaml:"branch" koanf:"branch"`
	ChaptersPath   string      `yaml:"chapters_path" koanf:"chapters_path"`
	Bibliography   string      `yaml:"bibliography" koanf:"bibliography"`
	BaseURL        string      `yaml:"base_url" koanf:"base_url"`
	Include        []string    `yaml:"include" koanf:"include"`
	Exclude        []string    `yaml:"exclude" koanf:"exclude"`
	MaxConcurrency int         `yaml:"max_concurrency" koanf:"max_concurrency"`
	Math           MathConfig  `yaml:"math" koanf:"math"`
	Serve          ServeConfig `yaml:"serve" koanf:"serve"`
}

// MathConfig holds math typesetting settings.
type MathConfig struct {
	Engine      MathEngine `yaml:"engine" koanf:"engine"`
	KaTeXScript string     `yaml:"katex_script" koanf:"katex_script"`
	// FailFast aborts a page on its first formula error instead of
	// leaving the fragment as source and moving on.
	FailFast bool `yaml:"fail_fast" koanf:"fail_fast"`
}

// ServeConfig holds settings for the preview server.
type ServeConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
