// Package config loads patchwork settings and plan files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const supportedVersion = "1"

// Loader implements ports.ConfigLoader using YAML files.
type Loader struct {
	Logger ports.Logger
	fs     FileSystem
}

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a new Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, fs: fsys}
}

// LoadSettings implements ports.ConfigLoader.
func (l *Loader) LoadSettings(cwd string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	path, ok := l.findSettings(cwd)
	if !ok {
		return settings, nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return settings, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	var file SettingsFile
	if err := decodeStrict(data, &file); err != nil {
		return settings, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s: unknown version %q, reading as version %s", path, file.Version, supportedVersion))
	}

	merge(&settings, &file)
	if err := validate(settings); err != nil {
		return settings, zerr.With(err, "path", path)
	}
	return settings, nil
}

// findSettings walks up from cwd looking for patchwork.yaml.
func (l *Loader) findSettings(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := l.fs.Stat(candidate); err == nil {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

// LoadPlan implements ports.ConfigLoader.
// The plan digest is the xxhash64 of the file bytes.
func (l *Loader) LoadPlan(path string) (*domain.Plan, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrPlanReadFailed, err.Error()), "path", path)
	}

	var file PlanFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrPlanParseFailed, err.Error()), "path", path)
	}

	plan := domain.NewPlan()
	for _, dto := range file.Tasks {
		if err := plan.AddTask(buildTask(dto)); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}
	plan.SetDigest(Digest(data))
	return plan, nil
}

// Digest returns the hex xxhash64 of data.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func buildTask(dto TaskDTO) *domain.Task {
	return &domain.Task{
		ID:                 dto.ID,
		Title:              dto.Title,
		Description:        dto.Description,
		Dependencies:       dto.Dependencies,
		CompletionCriteria: dto.CompletionCriteria,
		Pseudocode:         dto.Pseudocode,
		Files:              dto.Files,
	}
}

// decodeStrict unmarshals YAML, rejecting unknown fields. An empty document is not an error.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func merge(s *domain.Settings, f *SettingsFile) {
	if g := f.Generator; g != nil {
		setIf(&s.Generator.BaseURL, g.BaseURL)
		setIf(&s.Generator.Model, g.Model)
		setIf(&s.Generator.APIKeyEnv, g.APIKeyEnv)
		setIf(&s.Generator.MaxContextTokens, g.MaxContextTokens)
		if g.TimeoutSeconds != nil {
			s.Generator.Timeout = time.Duration(*g.TimeoutSeconds) * time.Second
		}
	}
	if sess := f.Session; sess != nil {
		setIf(&s.Session.Retries, sess.Retries)
		setIf(&s.Session.Requeries, sess.Requeries)
	}
	if sb := f.Sandbox; sb != nil {
		setIf(&s.Sandbox.BaseDir, sb.BaseDir)
	}
	if g := f.Git; g != nil {
		setIf(&s.Git.AuthorName, g.AuthorName)
		setIf(&s.Git.AuthorEmail, g.AuthorEmail)
		setIf(&s.Git.BranchPrefix, g.BranchPrefix)
	}
	if c := f.Context; c != nil {
		setIf(&s.Context.MaxFiles, c.MaxFiles)
		setIf(&s.Context.MaxSnippetsPerFile, c.MaxSnippetsPerFile)
		if c.Ignore != nil {
			s.Context.Ignore = c.Ignore
		}
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func validate(s domain.Settings) error {
	var errs error
	check := func(ok bool, key string, value any) {
		if !ok {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, fmt.Sprintf("%s: %v", key, value)), "key", key))
		}
	}
	check(s.Session.Retries >= 0, "session.retries", s.Session.Retries)
	check(s.Session.Requeries >= 0, "session.requeries", s.Session.Requeries)
	check(s.Generator.Timeout >= 0, "generator.timeoutSeconds", s.Generator.Timeout)
	check(s.Generator.MaxContextTokens >= 0, "generator.maxContextTokens", s.Generator.MaxContextTokens)
	check(s.Context.MaxFiles >= 0, "context.maxFiles", s.Context.MaxFiles)
	check(s.Context.MaxSnippetsPerFile >= 0, "context.maxSnippetsPerFile", s.Context.MaxSnippetsPerFile)
	check(s.Git.BranchPrefix != "", "git.branchPrefix", `""`)
	return errs
}
