package wallet

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "stark20"

// TokenEnvVar overrides the stored bridge token.
const TokenEnvVar = "STARK20_WALLET_TOKEN"

// ErrTokenNotFound is returned when no token is stored for a bridge.
var ErrTokenNotFound = errors.New("bridge token not found")

// Keystore keeps wallet bridge tokens in the OS keychain.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain, falling back
// to an encrypted file on headless Linux.
func DefaultKeystore() *Keystore {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
	}
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:     keychainService,
			AllowedBackends: []keyring.BackendType{keyring.FileBackend},
		})
	}
	return &Keystore{ring: ring}
}

// NewFileKeystore opens a password-protected file keystore in dir.
func NewFileKeystore(dir, password string) (*Keystore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: keyring.FixedStringPrompt(password),
	})
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}
	return &Keystore{ring: ring}, nil
}

// SaveToken stores the bearer token for a bridge URL.
func (k *Keystore) SaveToken(bridgeURL, token string) error {
	if k.ring == nil {
		return errors.New("keystore not available")
	}
	err := k.ring.Set(keyring.Item{
		Key:   tokenRef(bridgeURL),
		Data:  []byte(token),
		Label: "stark20 wallet bridge token",
	})
	if err != nil {
		return fmt.Errorf("keychain store: %w", err)
	}
	return nil
}

// Token returns the bearer token for a bridge URL. STARK20_WALLET_TOKEN wins
// over the keychain.
func (k *Keystore) Token(bridgeURL string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(TokenEnvVar)); v != "" {
		return v, nil
	}
	if k.ring == nil {
		return "", ErrTokenNotFound
	}
	item, err := k.ring.Get(tokenRef(bridgeURL))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// DeleteToken removes a stored token. Missing tokens are not an error.
func (k *Keystore) DeleteToken(bridgeURL string) error {
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(tokenRef(bridgeURL))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

func tokenRef(bridgeURL string) string {
	return keychainService + ".bridge." + strings.TrimRight(strings.ToLower(bridgeURL), "/")
}
