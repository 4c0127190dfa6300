package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the engine's secrets in the OS keychain.
	KeyringService = "onlyremote-engine"
)

var ErrNotFound = errors.New("secret not found")

// Resolver looks API keys up by their environment variable name: the
// process environment first, then the OS keychain under the same name.
type Resolver struct {
	Getenv  func(string) string
	Keyring bool
}

func NewResolver(useKeyring bool) Resolver {
	return Resolver{Getenv: os.Getenv, Keyring: useKeyring}
}

func (r Resolver) Get(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNotFound
	}
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(name)); v != "" {
		return v, nil
	}
	if !r.Keyring {
		return "", ErrNotFound
	}
	v, err := keyring.Get(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Lookup is Get without the error, for optional keys.
func (r Resolver) Lookup(name string) string {
	v, _ := r.Get(name)
	return v
}

func Set(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

func Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	err := keyring.Delete(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
