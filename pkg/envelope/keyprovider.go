package envelope

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/zalando/go-keyring"

	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
)

const (
	// EnvPrivateKey is the environment variable holding the base64 server key.
	EnvPrivateKey = "SERVER_PRIVATE_KEY"

	keyringService = "moodsense"
	keyringUser    = "server-private-key"
)

// Key sources accepted by ProviderFor.
const (
	SourceAuto    = "auto"
	SourceEnv     = "env"
	SourceKeyring = "keyring"
)

var (
	// ErrKeyNotConfigured indicates no server private key is available.
	ErrKeyNotConfigured = fmt.Errorf("server private key: %w", apperrors.ErrNotConfigured)

	// ErrKeyringUnavailable indicates the system keyring could not be reached.
	ErrKeyringUnavailable = errors.New("system keyring unavailable")
)

// KeyProvider yields the base64 server private key.
type KeyProvider interface {
	// PrivateKey returns the key or ErrKeyNotConfigured.
	PrivateKey() (string, error)

	// Description returns a human-readable description of the key source.
	Description() string
}

// EnvKeyProvider reads the key from an environment variable.
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates an EnvKeyProvider for envVar.
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

// PrivateKey returns the value of the environment variable.
func (p *EnvKeyProvider) PrivateKey() (string, error) {
	v := os.Getenv(p.envVar)
	if v == "" {
		return "", fmt.Errorf("%w: %s not set", ErrKeyNotConfigured, p.envVar)
	}
	return v, nil
}

// Description returns a description of this key provider.
func (p *EnvKeyProvider) Description() string {
	return fmt.Sprintf("Environment variable (%s)", p.envVar)
}

// KeyringKeyProvider stores the key in the system keyring
// (macOS Keychain, Windows Credential Manager, Linux Secret Service).
type KeyringKeyProvider struct {
	mu sync.Mutex
}

// NewKeyringKeyProvider creates a new KeyringKeyProvider.
func NewKeyringKeyProvider() *KeyringKeyProvider {
	return &KeyringKeyProvider{}
}

// PrivateKey reads the key from the keyring.
func (p *KeyringKeyProvider) PrivateKey() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: no keyring entry", ErrKeyNotConfigured)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

// Store validates key and writes it to the keyring, replacing any previous key.
func (p *KeyringKeyProvider) Store(privateKeyB64 string) error {
	if _, err := NewDecrypter(privateKeyB64); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := keyring.Set(keyringService, keyringUser, privateKeyB64); err != nil {
		return fmt.Errorf("%w: storing key: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// Delete removes the key from the keyring. A missing entry is not an error.
func (p *KeyringKeyProvider) Delete() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// Description returns a description of this key provider.
func (p *KeyringKeyProvider) Description() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "windows":
		return "Windows Credential Manager"
	default:
		return "System Keyring (Secret Service)"
	}
}

// ChainKeyProvider returns the first key any of its providers has.
type ChainKeyProvider struct {
	providers []KeyProvider
}

// NewChainKeyProvider tries providers in order.
func NewChainKeyProvider(providers ...KeyProvider) *ChainKeyProvider {
	return &ChainKeyProvider{providers: providers}
}

// PrivateKey returns the first configured key. Errors other than
// ErrKeyNotConfigured stop the search.
func (c *ChainKeyProvider) PrivateKey() (string, error) {
	for _, p := range c.providers {
		v, err := p.PrivateKey()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrKeyNotConfigured) {
			return "", err
		}
	}
	return "", ErrKeyNotConfigured
}

// Description lists the chained providers.
func (c *ChainKeyProvider) Description() string {
	desc := "first of:"
	for _, p := range c.providers {
		desc += " [" + p.Description() + "]"
	}
	return desc
}

// ProviderFor maps a configured key source to a provider.
// Priority for "auto":
// 1. SERVER_PRIVATE_KEY environment variable
// 2. System keyring
func ProviderFor(source string) (KeyProvider, error) {
	switch source {
	case SourceEnv:
		return NewEnvKeyProvider(EnvPrivateKey), nil
	case SourceKeyring:
		return NewKeyringKeyProvider(), nil
	case SourceAuto, "":
		return NewChainKeyProvider(NewEnvKeyProvider(EnvPrivateKey), NewKeyringKeyProvider()), nil
	default:
		return nil, fmt.Errorf("%w: unknown key source %q", apperrors.ErrValidation, source)
	}
}

// LoadDecrypter resolves the key from p and builds a Decrypter.
func LoadDecrypter(p KeyProvider) (*Decrypter, error) {
	key, err := p.PrivateKey()
	if err != nil {
		return nil, err
	}
	return NewDecrypter(key)
}
