package config

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".pagekit.yml"

// DefaultExcludes are glob patterns skipped when rendering a built site.
var DefaultExcludes = []string{
	"assets/**",
	"node_modules/**",
	".git/**",
	"_codeboxes/**",
	"*.min.js",
	"*.min.css",
}

// DefaultConfig returns a Config for the agentmodels.org layout: a Jekyll
// build in _site, chapter sources in chapters/, KaTeX from the site assets.
func DefaultConfig() *Config {
	return &Config{
		Title:          "Modeling Agents with Probabilistic Programs",
		SiteDir:        "_site",
		OutputDir:      "_site",
		ChaptersDir:    "chapters",
		Repository:     "https://github.com/agentmodels/agentmodels.org/",
		Branch:         "gh-pages",
		ChaptersPath:   "chapters",
		Bibliography:   "/bibliography.bib",
		Include:        []string{"**/*.html"},
		Exclude:        DefaultExcludes,
		MaxConcurrency: 5,
		Math: MathConfig{
			Engine:      MathKaTeX,
			KaTeXScript: "assets/js/katex.min.js",
		},
		Serve: ServeConfig{
			Port: 4000,
		},
	}
}
