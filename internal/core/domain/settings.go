package domain

import "time"

const (
	// DefaultRetries is the number of extra edit attempts after the first one.
	DefaultRetries = 3
	// DefaultRequeries is the number of re-queries allowed for malformed generator responses.
	DefaultRequeries = 3
	// DefaultAPIKeyEnv is the environment variable holding the generator API key.
	DefaultAPIKeyEnv = "PATCHWORK_API_KEY"
	// DefaultBranchPrefix prefixes the name of every run branch.
	DefaultBranchPrefix = "patchwork/"
)

// Settings is the runtime configuration of patchwork.
type Settings struct {
	Generator GeneratorSettings
	Session   SessionSettings
	Sandbox   SandboxSettings
	Git       GitSettings
	Context   ContextSettings
}

// GeneratorSettings configures the content generator client.
type GeneratorSettings struct {
	BaseURL          string
	Model            string
	APIKeyEnv        string
	Timeout          time.Duration
	MaxContextTokens int
}

// SessionSettings configures the edit session budgets.
type SessionSettings struct {
	Retries   int
	Requeries int
}

// SandboxSettings configures where sandboxes are provisioned.
type SandboxSettings struct {
	// BaseDir holds sandbox checkouts. Empty means the system temp directory.
	BaseDir string
}

// GitSettings configures commits and run branches.
type GitSettings struct {
	AuthorName   string
	AuthorEmail  string
	BranchPrefix string
}

// ContextSettings configures code context selection.
type ContextSettings struct {
	MaxFiles           int
	MaxSnippetsPerFile int
	Ignore             []string
}

// DefaultSettings returns the settings used when no config file is found.
func DefaultSettings() Settings {
	return Settings{
		Generator: GeneratorSettings{
			BaseURL:          "https://api.openai.com",
			Model:            "gpt-4o",
			APIKeyEnv:        DefaultAPIKeyEnv,
			Timeout:          120 * time.Second,
			MaxContextTokens: 6000,
		},
		Session: SessionSettings{
			Retries:   DefaultRetries,
			Requeries: DefaultRequeries,
		},
		Git: GitSettings{
			AuthorName:   "patchwork",
			AuthorEmail:  "patchwork@localhost",
			BranchPrefix: DefaultBranchPrefix,
		},
		Context: ContextSettings{
			MaxFiles:           5,
			MaxSnippetsPerFile: 3,
			Ignore:             []string{"node_modules", "vendor", "dist"},
		},
	}
}
