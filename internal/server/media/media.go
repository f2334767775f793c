// Package media stores employee images and hands out stable references to
// them. A reference has the form "uploads/<unix-ms>-<name>" and is what the
// employee record persists.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/logging"
	"github.com/google/uuid"
)

// RefPrefix starts every reference returned by Store and Commit.
const RefPrefix = "uploads/"

const stagingPrefix = ".staging/"

var ErrInvalidRef = errors.New("invalid media reference")

// Backend is the object store behind the Manager. Keys are slash separated
// and relative to the backend root.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Move(ctx context.Context, from, to string) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(ctx context.Context, key string) (string, error)
}

// Manager names, stores and removes images.
type Manager struct {
	backend Backend
	logger  logging.Logger
	now     func() time.Time

	mu   sync.Mutex
	last int64
}

func NewManager(backend Backend, logger logging.Logger) *Manager {
	return &Manager{
		backend: backend,
		logger:  logger.With("module", "media"),
		now:     time.Now,
	}
}

// Stage writes r under a temporary key and reserves its final name.
// Nothing is visible under Ref until the returned Upload is committed.
func (m *Manager) Stage(ctx context.Context, r io.Reader, originalName string) (*Upload, error) {
	key := stagingPrefix + uuid.NewString()
	if err := m.backend.Put(ctx, key, r); err != nil {
		return nil, fmt.Errorf("stage %s: %w", originalName, err)
	}
	return &Upload{m: m, key: key, name: m.nextName(originalName)}, nil
}

// Delete removes the file behind ref. Failures are logged and swallowed.
func (m *Manager) Delete(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	key, err := keyOf(ref)
	if err != nil {
		m.logger.Warn(ctx, "refusing to delete media", "ref", ref, "error", err)
		return
	}
	if err := m.backend.Remove(ctx, key); err != nil {
		m.logger.Warn(ctx, "media delete failed", "ref", ref, "error", err)
		return
	}
	m.logger.Debug(ctx, "media deleted", "ref", ref)
}

// Exists reports whether the file behind ref is present.
func (m *Manager) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := keyOf(ref)
	if err != nil {
		return false, err
	}
	return m.backend.Exists(ctx, key)
}

// healthRef names a file that never exists. Asking for it only proves the
// backend answers.
const healthRef = RefPrefix + "healthcheck"

// PingContext reports whether the backend can be reached.
func (m *Manager) PingContext(ctx context.Context) error {
	if _, err := m.Exists(ctx, healthRef); err != nil {
		return fmt.Errorf("media backend: %w", err)
	}
	return nil
}

// URL returns where clients can fetch ref, or "" when it cannot be resolved.
func (m *Manager) URL(ctx context.Context, ref string) string {
	if ref == "" {
		return ""
	}
	key, err := keyOf(ref)
	if err != nil {
		return ""
	}
	u, err := m.backend.URL(ctx, key)
	if err != nil {
		m.logger.Warn(ctx, "media url failed", "ref", ref, "error", err)
		return ""
	}
	return u
}

// nextName returns "<ms>-<base>" where ms is strictly increasing for the
// lifetime of the Manager.
func (m *Manager) nextName(originalName string) string {
	m.mu.Lock()
	ms := m.now().UnixMilli()
	if ms <= m.last {
		ms = m.last + 1
	}
	m.last = ms
	m.mu.Unlock()

	return fmt.Sprintf("%d-%s", ms, baseName(originalName))
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "_" {
		return "image"
	}
	return name
}

func keyOf(ref string) (string, error) {
	key, ok := strings.CutPrefix(ref, RefPrefix)
	if !ok || key == "" || strings.Contains(key, "/") || strings.HasPrefix(key, ".") {
		return "", ErrInvalidRef
	}
	return key, nil
}

// Upload is a staged file waiting for its owning record to be written.
type Upload struct {
	m         *Manager
	key       string
	name      string
	committed bool
	discarded bool
}

// Ref is the reference the file will have once committed.
func (u *Upload) Ref() string {
	return RefPrefix + u.name
}

// Committed reports whether Commit succeeded.
func (u *Upload) Committed() bool {
	return u.committed
}

// Commit moves the staged file to its reserved name.
func (u *Upload) Commit(ctx context.Context) error {
	if u.committed || u.discarded {
		return errors.New("upload already finished")
	}
	if err := u.m.backend.Move(ctx, u.key, u.name); err != nil {
		return fmt.Errorf("commit %s: %w", u.name, err)
	}
	u.committed = true
	return nil
}

// Discard drops a staged file that was never committed. It is a no-op after
// Commit, so it can be deferred right after Stage.
func (u *Upload) Discard(ctx context.Context) {
	if u == nil || u.committed || u.discarded {
		return
	}
	u.discarded = true
	if err := u.m.backend.Remove(ctx, u.key); err != nil {
		u.m.logger.Warn(ctx, "discarding staged media failed", "key", u.key, "error", err)
	}
}
