package config

// PlanFile represents the structure of a plan file.
type PlanFile struct {
	Tasks []TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition in a plan file.
type TaskDTO struct {
	ID                 string   `yaml:"id"`
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	Dependencies       []string `yaml:"dependencies"`
	CompletionCriteria string   `yaml:"completionCriteria"`
	Pseudocode         string   `yaml:"pseudocode"`
	Files              []string `yaml:"files"`
}

// SettingsFile represents the structure of patchwork.yaml.
// Pointer fields distinguish unset values from zero values.
type SettingsFile struct {
	Version   string          `yaml:"version"`
	Generator *GeneratorDTO   `yaml:"generator"`
	Session   *SessionDTO     `yaml:"session"`
	Sandbox   *SandboxDTO     `yaml:"sandbox"`
	Git       *GitDTO         `yaml:"git"`
	Context   *CodeContextDTO `yaml:"context"`
}

// GeneratorDTO configures the content generator.
type GeneratorDTO struct {
	BaseURL          *string `yaml:"baseURL"`
	Model            *string `yaml:"model"`
	APIKeyEnv        *string `yaml:"apiKeyEnv"`
	TimeoutSeconds   *int    `yaml:"timeoutSeconds"`
	MaxContextTokens *int    `yaml:"maxContextTokens"`
}

// SessionDTO configures edit session budgets.
type SessionDTO struct {
	Retries   *int `yaml:"retries"`
	Requeries *int `yaml:"requeries"`
}

// SandboxDTO configures sandbox placement.
type SandboxDTO struct {
	BaseDir *string `yaml:"baseDir"`
}

// GitDTO configures commits and run branches.
type GitDTO struct {
	AuthorName   *string `yaml:"authorName"`
	AuthorEmail  *string `yaml:"authorEmail"`
	BranchPrefix *string `yaml:"branchPrefix"`
}

// CodeContextDTO configures code context selection.
type CodeContextDTO struct {
	MaxFiles           *int     `yaml:"maxFiles"`
	MaxSnippetsPerFile *int     `yaml:"maxSnippetsPerFile"`
	Ignore             []string `yaml:"ignore"`
}
