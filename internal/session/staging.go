package session

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"loan-wizard/internal/wizard"
)

var (
	ErrFileTooLarge     = errors.New("FILE_TOO_LARGE")
	ErrInvalidSessionID = errors.New("invalid session id")
)

// Staging keeps attached files on disk until they are uploaded or dropped.
// Each session gets its own directory under root.
type Staging struct {
	fs       afero.Fs
	root     string
	maxBytes int64
}

func NewStaging(fs afero.Fs, root string, maxBytes int64) *Staging {
	if root == "" {
		root = "staging"
	}
	return &Staging{fs: fs, root: root, maxBytes: maxBytes}
}

// NewOSStaging stages files under dir on the local filesystem.
func NewOSStaging(dir string, maxBytes int64) *Staging {
	return NewStaging(afero.NewOsFs(), dir, maxBytes)
}

// sessionDir refuses ids that would resolve outside root or onto root itself.
func (s *Staging) sessionDir(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return path.Join(s.root, sessionID), nil
}

// Stage copies r to disk and returns a file whose Release removes it. A
// file larger than the configured limit is rejected and nothing is kept.
func (s *Staging) Stage(sessionID string, slot wizard.Slot, name, contentType string, r io.Reader) (*wizard.AttachedFile, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	p := path.Join(dir, string(slot)+"-"+uuid.NewString())
	f, err := s.fs.Create(p)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return nil, err
	}

	fs := s.fs
	return wizard.NewAttachedFile(cleanName(name), contentType, n,
		func() (io.ReadCloser, error) { return fs.Open(p) },
		func() error { return fs.Remove(p) },
	), nil
}

// Purge removes everything staged for a session.
func (s *Staging) Purge(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return s.fs.RemoveAll(dir)
}

func cleanName(name string) string {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
