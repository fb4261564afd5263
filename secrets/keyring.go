package secrets

import (
	stderrors "errors"

	"github.com/zalando/go-keyring"

	"github.com/jmgilman/go/filestore/errors"
)

// Keyring reads secrets from the operating system keychain (macOS Keychain,
// Secret Service, Windows Credential Manager) under Service, one account per
// secret name.
//
// A missing entry and an unreachable keychain both count as not provided, so a
// headless machine falls through to the next provider in a chain.
type Keyring struct {
	Service string
}

// Get implements Provider.
func (k Keyring) Get(name string) (string, error) {
	if k.Service == "" {
		return "", NotProvided(name, "keyring")
	}

	v, err := keyring.Get(k.Service, name)
	switch {
	case err == nil && v != "":
		return v, nil
	case err == nil, stderrors.Is(err, keyring.ErrNotFound):
		return "", NotProvided(name, "keyring:"+k.Service)
	}
	return "", errors.WrapWithContext(err, errors.CodeSecretNotProvided, "keyring unavailable",
		map[string]interface{}{"secret": name, "source": "keyring:" + k.Service})
}

// Set stores value in the keychain, for the CLI's login flow.
func (k Keyring) Set(name, value string) error {
	if err := keyring.Set(k.Service, name, value); err != nil {
		return errors.WrapWithContext(err, errors.CodeUnavailable, "failed to store secret in keyring",
			map[string]interface{}{"secret": name, "service": k.Service})
	}
	return nil
}
