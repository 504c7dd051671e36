package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "fitfuel"
	defaultUser = "default"
)

var (
	// ErrNoToken is returned when no bearer token is stored.
	ErrNoToken = errors.New("no stored session token")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be used.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// TokenStore holds the bearer token used to restore a session.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// Keyring stores one token per account in the OS keyring.
type Keyring struct {
	Account string
}

func NewKeyring(account string) *Keyring {
	account = strings.TrimSpace(account)
	if account == "" {
		account = defaultUser
	}
	return &Keyring{Account: account}
}

func (k *Keyring) Token() (string, error) {
	tok, err := keyring.Get(serviceName, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return tok, nil
}

func (k *Keyring) SetToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session token cannot be empty")
	}
	if err := keyring.Set(serviceName, k.Account, token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (k *Keyring) Clear() error {
	err := keyring.Delete(serviceName, k.Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}

// Available reports whether the keyring answers reads.
func Available() bool {
	_, err := keyring.Get(serviceName, "availability-check")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
