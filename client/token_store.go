package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// TokenStore persists one AuthResult blob. A nil result from Load means
// logged out; Load never fails on mere absence.
type TokenStore interface {
	Load() (*core.AuthResult, error)
	Save(result *core.AuthResult) error
	Clear() error
}

// FileTokenStore keeps the AuthResult as a JSON file, mode 0600 since
// the refresh token inside grants permanent access.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a store at path. Parent directories are
// created on first Save.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (*core.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var result core.AuthResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt blob is treated as logged out rather than a fatal
		// error; the controller will bootstrap a fresh identity.
		return nil, nil
	}
	if result.RefreshToken == "" || result.SessionToken == "" {
		return nil, nil
	}
	return &result, nil
}

func (s *FileTokenStore) Save(result *core.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the AuthResult in process, for tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	result *core.AuthResult
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (*core.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.result.RefreshToken == "" || s.result.SessionToken == "" {
		return nil, nil
	}
	copied := *s.result
	return &copied, nil
}

func (s *MemoryTokenStore) Save(result *core.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *result
	s.result = &copied
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
	return nil
}
