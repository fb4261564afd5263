package secrets

import (
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/sync/singleflight"

	"github.com/jmgilman/go/filestore/errors"
)

// CachedProvider remembers values returned by another provider. Values are held
// in memguard enclaves, encrypted while at rest in memory. Concurrent lookups of
// the same name reach the underlying provider once. Failures are not cached.
type CachedProvider struct {
	inner Provider
	group singleflight.Group

	mu     sync.RWMutex
	values map[string]*memguard.Enclave
}

// Cached wraps p.
func Cached(p Provider) *CachedProvider {
	return &CachedProvider{
		inner:  p,
		values: make(map[string]*memguard.Enclave),
	}
}

// Get implements Provider.
func (c *CachedProvider) Get(name string) (string, error) {
	c.mu.RLock()
	enclave := c.values[name]
	c.mu.RUnlock()

	if enclave != nil {
		return open(name, enclave)
	}

	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		v, err := c.inner.Get(name)
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", NotProvided(name, "cache")
		}

		// NewEnclave wipes its argument.
		c.mu.Lock()
		c.values[name] = memguard.NewEnclave([]byte(v))
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Forget drops the cached value of name.
func (c *CachedProvider) Forget(name string) {
	c.mu.Lock()
	delete(c.values, name)
	c.mu.Unlock()
}

// Purge drops every cached value.
func (c *CachedProvider) Purge() {
	c.mu.Lock()
	c.values = make(map[string]*memguard.Enclave)
	c.mu.Unlock()
}

func open(name string, enclave *memguard.Enclave) (string, error) {
	buf, err := enclave.Open()
	if err != nil {
		return "", errors.WrapWithContext(err, errors.CodeInternal, "failed to open cached secret",
			map[string]interface{}{"secret": name})
	}
	defer buf.Destroy()
	return string(buf.Bytes()), nil
}
