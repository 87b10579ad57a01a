// Package prefs keeps small per-device values (session token, theme, device
// id, user profile) in a YAML file.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrUnknownTheme = errors.New("unknown theme")
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

type values struct {
	UUID      string `yaml:"uuid,omitempty"`
	Token     string `yaml:"token,omitempty"`
	Theme     Theme  `yaml:"theme,omitempty"`
	UserEmail string `yaml:"user_email,omitempty"`
	UserName  string `yaml:"user_name,omitempty"`
}

// FileStore is safe for concurrent use. Every save rewrites the whole file
// through a temp file and a rename.
type FileStore struct {
	mu   sync.Mutex
	path string
	v    values
}

// Open reads path, treating a missing file as empty.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.v); err != nil {
		return nil, fmt.Errorf("decode prefs %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) GetToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v.Token == "" {
		return "", ErrNoToken
	}
	return s.v.Token, nil
}

func (s *FileStore) SaveToken(token string) error {
	return s.update(func(v *values) { v.Token = token })
}

func (s *FileStore) ClearToken() error {
	return s.update(func(v *values) { v.Token = "" })
}

// GetSelectedTheme reports false when no theme was ever chosen.
func (s *FileStore) GetSelectedTheme() (Theme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Theme, s.v.Theme != ""
}

func (s *FileStore) SaveSelectedTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return s.update(func(v *values) { v.Theme = t })
}

// GetUUID returns the device id, creating and persisting it on first use.
func (s *FileStore) GetUUID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v.UUID != "" {
		return s.v.UUID, nil
	}
	next := s.v
	next.UUID = uuid.NewString()
	if err := s.write(next); err != nil {
		return "", err
	}
	s.v = next
	return s.v.UUID, nil
}

func (s *FileStore) GetUserEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.UserEmail
}

func (s *FileStore) SaveUserEmail(email string) error {
	return s.update(func(v *values) { v.UserEmail = email })
}

func (s *FileStore) GetUserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.UserName
}

func (s *FileStore) SaveUserName(name string) error {
	return s.update(func(v *values) { v.UserName = name })
}

// ClearUserData drops the profile fields and keeps token, theme and device id.
func (s *FileStore) ClearUserData() error {
	return s.update(func(v *values) {
		v.UserEmail = ""
		v.UserName = ""
	})
}

func (s *FileStore) update(fn func(*values)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.v
	fn(&next)
	if err := s.write(next); err != nil {
		return err
	}
	s.v = next
	return nil
}

func (s *FileStore) write(v values) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prefs dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}
