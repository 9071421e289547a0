// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/openflows/platformdb/internal/models"
)

// StubIdentitySource is a test double for the engine's identity source.
type StubIdentitySource struct {
	Identities []models.ExternalIdentity
	ListErr    error
	ExistsErr  error
}

func (s *StubIdentitySource) ListWithEmail(ctx context.Context) ([]models.ExternalIdentity, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Identities, nil
}

func (s *StubIdentitySource) Exists(ctx context.Context, id string) (bool, error) {
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	for _, ident := range s.Identities {
		if ident.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// StubUserSource is a test double for the engine's platform user source.
// Writes mutate the in-memory Users slice so re-runs observe prior links.
type StubUserSource struct {
	Users    []models.User
	ListErr  error
	WriteErr map[string]error // per-user id write failures
	Writes   []string         // user ids written, in order
}

func (s *StubUserSource) List(ctx context.Context) ([]models.User, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]models.User, len(s.Users))
	copy(out, s.Users)
	return out, nil
}

func (s *StubUserSource) ListLinked(ctx context.Context) ([]models.User, error) {
	var linked []models.User
	for _, u := range s.Users {
		if u.ExternalID != "" {
			linked = append(linked, u)
		}
	}
	return linked, nil
}

func (s *StubUserSource) SetExternalID(ctx context.Context, userID, externalID string) error {
	if err := s.WriteErr[userID]; err != nil {
		return err
	}
	for i := range s.Users {
		if s.Users[i].ID == userID {
			s.Users[i].ExternalID = externalID
			s.Writes = append(s.Writes, userID)
			return nil
		}
	}
	return os.ErrNotExist
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
