package domain

import "path/filepath"

const (
	// WorkDirName is the name of the internal workspace directory.
	WorkDirName = ".patchwork"

	// ReportsDirName is the name of the report store directory.
	ReportsDirName = "reports"

	// ConfigFileName is the name of the settings file.
	ConfigFileName = "patchwork.yaml"

	// SandboxDirPrefix prefixes the directory name of every sandbox checkout.
	SandboxDirPrefix = "patchwork-"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultReportsPath returns the default path for stored run reports.
// It joins .patchwork and reports.
func DefaultReportsPath() string {
	return filepath.Join(WorkDirName, ReportsDirName)
}
