// Package auth keeps the optional bearer tokens sent to to-do stores. Tokens
// are stored per store endpoint, so switching --base-url switches credentials.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// EnvToken overrides any stored token, whatever the endpoint.
const EnvToken = "TODOS_TOKEN"

// Source says where a resolved token came from.
type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
)

// Credential is the token saved for one endpoint.
type Credential struct {
	Token     string     `json:"token"`
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the credential carries an expiry that has passed.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Resolved is the token picked for an endpoint.
type Resolved struct {
	Credential
	Endpoint string
	Source   Source
}

// Keyring is the credentials file, keyed by normalized endpoint.
type Keyring struct {
	path    string
	entries map[string]Credential
}

type keyringFile struct {
	Endpoints map[string]Credential `json:"endpoints"`
}

// DefaultPath is ~/.todos/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".todos", "credentials.json"), nil
}

// Endpoint normalizes a store base URL into a keyring key: scheme and host
// lowercased, no trailing slash, no query or fragment.
func Endpoint(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("endpoint: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("endpoint: %q is not an http(s) URL", baseURL)
	}
	return scheme + "://" + strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/"), nil
}

// OpenKeyring loads the keyring at path. A missing file is an empty keyring.
func OpenKeyring(path string) (*Keyring, error) {
	k := &Keyring{path: path, entries: map[string]Credential{}}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return k, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var f keyringFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	for ep, c := range f.Endpoints {
		k.entries[ep] = c
	}
	return k, nil
}

// OpenDefault opens the keyring at DefaultPath.
func OpenDefault() (*Keyring, error) {
	p, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenKeyring(p)
}

// Lookup returns the credential stored for baseURL.
func (k *Keyring) Lookup(baseURL string) (Credential, bool, error) {
	ep, err := Endpoint(baseURL)
	if err != nil {
		return Credential{}, false, err
	}
	c, ok := k.entries[ep]
	return c, ok, nil
}

// Put stores token for baseURL, replacing any previous one. A "Bearer "
// prefix is stripped.
func (k *Keyring) Put(baseURL, token string, expires *time.Time, now time.Time) error {
	ep, err := Endpoint(baseURL)
	if err != nil {
		return err
	}
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return errors.New("empty token")
	}
	k.entries[ep] = Credential{Token: token, SavedAt: now.UTC(), ExpiresAt: expires}
	return nil
}

// Remove drops the credential for baseURL and reports whether one existed.
func (k *Keyring) Remove(baseURL string) (bool, error) {
	ep, err := Endpoint(baseURL)
	if err != nil {
		return false, err
	}
	_, ok := k.entries[ep]
	delete(k.entries, ep)
	return ok, nil
}

// Endpoints lists the stored endpoints in sorted order.
func (k *Keyring) Endpoints() []string {
	out := make([]string, 0, len(k.entries))
	for ep := range k.entries {
		out = append(out, ep)
	}
	sort.Strings(out)
	return out
}

// Save writes the keyring owner-only. An empty keyring removes the file.
func (k *Keyring) Save() error {
	if len(k.entries) == 0 {
		if err := os.Remove(k.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove credentials: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(keyringFile{Endpoints: k.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := k.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, k.path); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Resolve picks the token for baseURL: EnvToken first, then the keyring.
// It returns nil, nil when neither has one.
func (k *Keyring) Resolve(baseURL string) (*Resolved, error) {
	ep, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}
	if env := stripBearer(strings.TrimSpace(os.Getenv(EnvToken))); env != "" {
		return &Resolved{Credential: Credential{Token: env}, Endpoint: ep, Source: SourceEnv}, nil
	}
	c, ok := k.entries[ep]
	if !ok {
		return nil, nil
	}
	return &Resolved{Credential: c, Endpoint: ep, Source: SourceFile}, nil
}

func stripBearer(s string) string {
	if len(s) >= 7 && strings.EqualFold(s[:7], "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
