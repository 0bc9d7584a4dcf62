// Package secrets stores the review token in the system keyring, or in an
// encrypted file where no keyring service is available.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/salmonumbrella/jumpviz/internal/config"
)

const (
	// EnvKeyringBackend overrides the configured keyring backend.
	EnvKeyringBackend = "JUMPVIZ_KEYRING_BACKEND"
	// EnvKeyringPassword unlocks the file backend without a prompt.
	EnvKeyringPassword = "JUMPVIZ_KEYRING_PASSWORD"

	tokenKeyPrefix     = "token:"
	keyringOpenTimeout = 5 * time.Second
)

// Keyring backend names accepted in config and the environment.
const (
	BackendAuto     = "auto"
	BackendKeychain = "keychain"
	BackendFile     = "file"
)

var errKeyringTimeout = errors.New("timed out opening the system keyring")

// keyringOpenFunc is swapped in tests.
var keyringOpenFunc = keyring.Open

// Token is a named secret with its creation time.
type Token struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists tokens by name.
type Store interface {
	SetToken(name string, tok Token) error
	GetToken(name string) (Token, error)
	DeleteToken(name string) error
	Keys() ([]string, error)
}

// KeyringStore is a Store backed by a keyring.Keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// KeyringBackendInfo records which backend was chosen and where from.
type KeyringBackendInfo struct {
	Value  string
	Source string // env, config or default
}

// ResolveKeyringBackendInfo picks the backend from the environment, then the
// config file, then "auto".
func ResolveKeyringBackendInfo(cfg *config.Config) (KeyringBackendInfo, error) {
	if v := strings.TrimSpace(os.Getenv(EnvKeyringBackend)); v != "" {
		return validateBackend(KeyringBackendInfo{Value: strings.ToLower(v), Source: "env"})
	}
	if cfg != nil && strings.TrimSpace(cfg.KeyringBackend) != "" {
		return validateBackend(KeyringBackendInfo{Value: strings.ToLower(strings.TrimSpace(cfg.KeyringBackend)), Source: "config"})
	}
	return KeyringBackendInfo{Value: BackendAuto, Source: "default"}, nil
}

func validateBackend(info KeyringBackendInfo) (KeyringBackendInfo, error) {
	switch info.Value {
	case BackendAuto, BackendKeychain, BackendFile:
		return info, nil
	default:
		return info, fmt.Errorf("invalid keyring backend %q (from %s): expected auto, keychain or file", info.Value, info.Source)
	}
}

// OpenDefault opens the keyring selected by environment and config.
func OpenDefault() (Store, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		return nil, err
	}
	info, err := ResolveKeyringBackendInfo(cfg)
	if err != nil {
		return nil, err
	}

	goos := runtime.GOOS
	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if shouldForceFileBackend(goos, info, dbusAddr) {
		info.Value = BackendFile
	}

	ringCfg := keyring.Config{
		ServiceName:              config.AppName,
		KeychainTrustApplication: true,
	}
	switch info.Value {
	case BackendKeychain:
		ringCfg.AllowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.WinCredBackend,
		}
	case BackendFile:
		dir, err := config.EnsureKeyringDir()
		if err != nil {
			return nil, err
		}
		ringCfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ringCfg.FileDir = dir
		ringCfg.FilePasswordFunc = filePassword
	}

	if goos == "darwin" && info.Value != BackendFile {
		if err := EnsureKeychainAccess(); err != nil {
			return nil, err
		}
	}

	var ring keyring.Keyring
	if shouldUseKeyringTimeout(goos, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(ringCfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(ringCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", wrapKeychainError(err))
	}
	return NewKeyringStore(ring), nil
}

// shouldForceFileBackend reports whether "auto" must fall back to the file
// backend: on Linux without a D-Bus session no secret service is reachable.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == BackendAuto && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening may hang on a D-Bus
// secret service that never answers.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value != BackendFile && dbusAddr != ""
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring: ring, err: err}
	}()

	select {
	case res := <-ch:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; set %s=%s and %s to use the encrypted file backend instead",
			errKeyringTimeout, timeout, EnvKeyringBackend, BackendFile, EnvKeyringPassword)
	}
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(EnvKeyringPassword); pw != "" {
		return pw, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%s is required for the file keyring backend when stdin is not a terminal", EnvKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

// wrapKeychainError adds recovery steps to errors caused by a locked macOS
// keychain. Other errors are returned unchanged.
func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	if !isLockedKeychainMessage(err.Error()) {
		return err
	}
	return fmt.Errorf("%w\n\nThe login keychain is locked. Unlock it and retry:\n  security unlock-keychain %s\nor set %s=%s",
		err, loginKeychainPath(), EnvKeyringBackend, BackendFile)
}

func isLockedKeychainMessage(msg string) bool {
	return strings.Contains(msg, "errSecInteractionNotAllowed") || strings.Contains(msg, "-25308")
}

// SetToken stores tok under name.
func (s *KeyringStore) SetToken(name string, tok Token) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("token name is required")
	}
	if tok.Name == "" {
		tok.Name = name
	}
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	err = s.ring.Set(keyring.Item{
		Key:   tokenKeyPrefix + name,
		Data:  data,
		Label: config.AppName + " " + name,
	})
	return wrapKeychainError(err)
}

// GetToken loads the token stored under name.
func (s *KeyringStore) GetToken(name string) (Token, error) {
	item, err := s.ring.Get(tokenKeyPrefix + strings.TrimSpace(name))
	if err != nil {
		return Token{}, wrapKeychainError(err)
	}
	var tok Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return Token{}, fmt.Errorf("decoding token %s: %w", name, err)
	}
	return tok, nil
}

// DeleteToken removes the token stored under name.
func (s *KeyringStore) DeleteToken(name string) error {
	return wrapKeychainError(s.ring.Remove(tokenKeyPrefix + strings.TrimSpace(name)))
}

// Keys lists stored token names.
func (s *KeyringStore) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, wrapKeychainError(err)
	}
	var names []string
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, tokenKeyPrefix); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
