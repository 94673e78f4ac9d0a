// Package cas stores run reports addressed by plan digest.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/zerr"
)

var digestPattern = regexp.MustCompile(`^[0-9a-f]{1,64}$`)

// Store implements ports.ReportStore using a file per plan digest.
type Store struct{}

// NewStore creates a new Store.
func NewStore() (*Store, error) {
	return &Store{}, nil
}

// Get retrieves the report for a plan digest. It returns nil, nil if none is stored.
func (s *Store) Get(root, digest string) (*domain.Report, error) {
	filename := s.getFilename(root, digest)
	//nolint:gosec // Path is constructed from the repository root and a sanitized key
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "path", filename)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreUnmarshalFailed, err.Error()), "path", filename)
	}
	return &report, nil
}

// Put stores the report, replacing any previous report for the same plan.
// The file is written to a temporary name and renamed into place.
func (s *Store) Put(root string, report *domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return zerr.Wrap(domain.ErrStoreMarshalFailed, err.Error())
	}

	filename := s.getFilename(root, report.PlanDigest)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreCreateFailed, err.Error()), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "dir", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}
	return nil
}

// Clear removes every stored report under root.
func (s *Store) Clear(root string) error {
	dir := filepath.Join(root, domain.DefaultReportsPath())
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clear reports"), "dir", dir)
	}
	return nil
}

// getFilename maps a digest to its report file. Keys that are not plain
// lowercase hex are hashed so they cannot escape the reports directory.
func (s *Store) getFilename(root, digest string) string {
	key := digest
	if !digestPattern.MatchString(key) {
		key = fmt.Sprintf("%016x", xxhash.Sum64String(digest))
	}
	return filepath.Join(root, domain.DefaultReportsPath(), key+".json")
}
