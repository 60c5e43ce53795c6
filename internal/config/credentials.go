package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "claudebridge"
	keyringUser    = "upstream-api-key"
)

// ErrNoStoredKey indicates no API key is present in the system keyring.
var ErrNoStoredKey = errors.New("no API key stored in keyring")

// StoreAPIKey saves the upstream API key in the system keyring.
func StoreAPIKey(key string) error {
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("storing API key: %w", err)
	}
	return nil
}

// LoadAPIKey reads the upstream API key from the system keyring.
func LoadAPIKey() (string, error) {
	key, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoStoredKey
		}
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return key, nil
}

// DeleteAPIKey removes the upstream API key from the system keyring.
// Deleting an absent key is not an error.
func DeleteAPIKey() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("deleting API key: %w", err)
	}
	return nil
}
