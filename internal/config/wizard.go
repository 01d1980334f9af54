package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// siteDirCandidates are checked, in order, for an existing built site.
var siteDirCandidates = []string{"_site", "public", "build", "docs"}

// detectSiteDir returns the first candidate directory holding an index.html.
func detectSiteDir() string {
	for _, dir := range siteDirCandidates {
		if _, err := os.Stat(dir + "/index.html"); err == nil {
			return dir
		}
	}
	return DefaultConfig().SiteDir
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .pagekit.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to pagekit! Let's configure your site.")
	fmt.Println()

	def := DefaultConfig()

	siteDir := detectSiteDir()
	if siteDir != def.SiteDir {
		fmt.Printf("Detected built site in: %s\n\n", siteDir)
	}

	repoPrompt := promptui.Prompt{
		Label:   "GitHub repository URL",
		Default: def.Repository,
		Validate: func(s string) error {
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return fmt.Errorf("must be an http(s) URL")
			}
			return nil
		},
	}
	repository, err := repoPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}
	if !strings.HasSuffix(repository, "/") {
		repository += "/"
	}

	branchPrompt := promptui.Prompt{
		Label:   "Branch",
		Default: def.Branch,
	}
	branch, err := branchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("branch: %w", err)
	}

	sitePrompt := promptui.Prompt{
		Label:   "Built site directory",
		Default: siteDir,
	}
	siteDir, err = sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}

	outputPrompt := promptui.Prompt{
		Label:   "Output directory for rendered pages",
		Default: siteDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	mathPrompt := promptui.Select{
		Label: "Math typesetting",
		Items: []string{
			"katex - render formulas ahead of time",
			"none  - leave math/tex scripts for the browser",
		},
	}
	mathIdx, _, err := mathPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("math engine: %w", err)
	}
	engines := []MathEngine{MathKaTeX, MathNone}

	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	exclude := append([]string(nil), DefaultExcludes...)
	if excludeStr != "" {
		exclude = append(exclude, splitAndTrim(excludeStr)...)
	}

	portPrompt := promptui.Prompt{
		Label:   "Preview server port",
		Default: strconv.Itoa(def.Serve.Port),
		Validate: func(s string) error {
			if _, err := strconv.Atoi(s); err != nil {
				return fmt.Errorf("must be a number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := def
	cfg.Repository = repository
	cfg.Branch = branch
	cfg.SiteDir = siteDir
	cfg.OutputDir = outputDir
	cfg.Exclude = exclude
	cfg.Math.Engine = engines[mathIdx]
	cfg.Serve.Port = port

	if cfg.Math.Engine == MathKaTeX {
		if _, err := os.Stat(cfg.KaTeXScriptPath()); err != nil {
			fmt.Printf("\nNote: %s not found; set math.katex_script before running pagekit render.\n", cfg.KaTeXScriptPath())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
