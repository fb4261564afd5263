package secrets

import (
	"os"
	"strings"
)

// DefaultEnvPrefix is the prefix used by the local secret chain.
const DefaultEnvPrefix = "FILESTORE_"

// Env reads Prefix + upper-cased name from the environment, so with the default
// prefix the password is FILESTORE_PASSWORD.
type Env struct {
	Prefix string
}

// Get implements Provider.
func (e Env) Get(name string) (string, error) {
	key := e.Prefix + strings.ToUpper(name)
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", NotProvided(name, "env:"+key)
}
