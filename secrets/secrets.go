// Package secrets defines the boundary through which storage backends obtain
// connection parameters, and the providers that ship with filestore.
//
// Backends ask for a value by name only when they need it. The local binding
// chains Env, Keyring and Prompt behind Cached, so a credential typed once at a
// terminal is not asked for again for the rest of the process.
//
// An empty value is never returned: a provider that has nothing to offer fails
// with errors.CodeSecretNotProvided, which Chain treats as "try the next one".
package secrets

import (
	"github.com/jmgilman/go/filestore/errors"
)

// Well-known secret names.
const (
	Host     = "host"
	Share    = "share"
	User     = "user"
	Password = "password"
	Root     = "root"
	Token    = "token"
)

// Provider returns named connection parameters.
type Provider interface {
	// Get returns the value of name, or an error with
	// errors.CodeSecretNotProvided if the provider has none.
	Get(name string) (string, error)
}

// NotProvided returns the error a provider reports when it has no value for
// name. source identifies the provider in the error context.
func NotProvided(name, source string) error {
	return errors.WithContextMap(
		errors.Newf(errors.CodeSecretNotProvided, "secret %q not provided", name),
		map[string]interface{}{"secret": name, "source": source},
	)
}

// IsNotProvided reports whether err means the value is simply absent.
func IsNotProvided(err error) bool {
	return errors.HasCode(err, errors.CodeSecretNotProvided)
}

// Func adapts a function to Provider.
type Func func(name string) (string, error)

// Get calls f.
func (f Func) Get(name string) (string, error) {
	return f(name)
}

// Static serves values from a map. Tests and plugins with fixed settings use it.
type Static map[string]string

// Get returns the mapped value.
func (s Static) Get(name string) (string, error) {
	if v := s[name]; v != "" {
		return v, nil
	}
	return "", NotProvided(name, "static")
}

type chain []Provider

// Chain returns a provider that asks each of providers in turn. The first value
// wins; a not-provided error moves on, any other error is returned at once.
// Nil providers are skipped.
func Chain(providers ...Provider) Provider {
	c := make(chain, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			c = append(c, p)
		}
	}
	return c
}

func (c chain) Get(name string) (string, error) {
	for _, p := range c {
		v, err := p.Get(name)
		switch {
		case err == nil && v != "":
			return v, nil
		case err == nil, IsNotProvided(err):
			continue
		default:
			return "", err
		}
	}
	return "", NotProvided(name, "chain")
}
