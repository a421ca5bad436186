// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the worker's service credentials in the OS
// credential store: App Store Connect API key details and the OpenAI key.
// The values are handed to the worker process as environment variables and
// never written to rosetta.yaml.
package keychain

import (
	"errors"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"rosetta/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "rosetta"

// Keys used for storing secrets in the OS keychain.
const (
	KeyIssuerID       = "asc_issuer_id"
	KeyKeyID          = "asc_key_id"
	KeyPrivateKeyPath = "asc_private_key_path"
	KeyOpenAIKey      = "openai_api_key"
)

var allKeys = []string{KeyIssuerID, KeyKeyID, KeyPrivateKeyPath, KeyOpenAIKey}

// Credentials are the secrets the worker reads from its environment.
type Credentials struct {
	IssuerID       string
	KeyID          string
	PrivateKeyPath string
	OpenAIKey      string
}

// Env returns KEY=VALUE pairs for the non-empty fields.
func (c Credentials) Env() []string {
	var env []string
	for _, kv := range [][2]string{
		{"ISSUER_ID", c.IssuerID},
		{"KEY_ID", c.KeyID},
		{"PRIVATE_KEY_PATH", c.PrivateKeyPath},
		{"OPENAI_API_KEY", c.OpenAIKey},
	} {
		if kv[1] != "" {
			env = append(env, kv[0]+"="+kv[1])
		}
	}
	return env
}

// Complete reports whether the App Store Connect fields are all set.
func (c Credentials) Complete() bool {
	return c.IssuerID != "" && c.KeyID != "" && c.PrivateKeyPath != ""
}

// store is the minimal secret store both backends implement.
// Get returns keyring.ErrKeyNotFound for missing keys.
type store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the stored credentials.
type Manager struct {
	mu    sync.RWMutex
	store store
}

var (
	globalManager *Manager
	mu            sync.Mutex
)

// NewManager opens the platform credential store. On macOS the security
// command is preferred and the keyring library is the fallback.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{store: backend}, nil
		}
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{store: ringStore{ring: ring}}
}

// GetManager returns the process-wide manager, retrying initialization after
// a previous failure.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return m, nil
}

func openRing() (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		PassPrefix:  ServiceName,
	}
	switch runtime.GOOS {
	case "darwin":
		cfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		cfg.AllowedBackends = []keyring.BackendType{keyring.WinCredBackend}
		cfg.WinCredPrefix = ServiceName
	default:
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
		cfg.LibSecretCollectionName = ServiceName
		cfg.KWalletAppID = ServiceName
		cfg.KWalletFolder = ServiceName
		if dir, err := xdg.StateDir(); err == nil {
			cfg.FileDir = dir + "/keyring"
		}
		cfg.FilePasswordFunc = keyring.TerminalPrompt
		if pw := os.Getenv("ROSETTA_KEYRING_PASSWORD"); pw != "" {
			cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable; install 'pass': brew install pass gnupg && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveCredentials stores every non-empty field; empty fields leave the stored value untouched.
func (m *Manager) SaveCredentials(c Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range c.byKey() {
		if value == "" {
			continue
		}
		if err := m.store.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// LoadCredentials returns whatever is stored; missing keys yield empty fields.
func (m *Manager) LoadCredentials() (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make(map[string]string, len(allKeys))
	for _, key := range allKeys {
		v, err := m.store.Get(key)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return Credentials{}, err
		}
		values[key] = v
	}
	return Credentials{
		IssuerID:       values[KeyIssuerID],
		KeyID:          values[KeyKeyID],
		PrivateKeyPath: values[KeyPrivateKeyPath],
		OpenAIKey:      values[KeyOpenAIKey],
	}, nil
}

// ClearCredentials removes all stored credentials.
func (m *Manager) ClearCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, key := range allKeys {
		if err := m.store.Delete(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c Credentials) byKey() map[string]string {
	return map[string]string{
		KeyIssuerID:       c.IssuerID,
		KeyKeyID:          c.KeyID,
		KeyPrivateKeyPath: c.PrivateKeyPath,
		KeyOpenAIKey:      c.OpenAIKey,
	}
}

type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error { return r.ring.Remove(key) }
