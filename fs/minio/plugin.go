package minio

import (
	"github.com/jmgilman/go/filestore"
)

// Factory builds the MinIO plugin from the resolver's secrets and config.
// Nothing is contacted here; the provider connects on its first operation.
func Factory(pc filestore.PluginContext) (filestore.Plugin, error) {
	p, err := New(Options{
		Secrets: pc.Secrets,
		Secure:  pc.Config.MinioSecure,
		Logger:  pc.Logger,
	})
	if err != nil {
		return filestore.Plugin{}, err
	}
	return filestore.Plugin{Store: p}, nil
}

// Register installs Factory in the default registry under
// filestore.PluginName. Call it once, from main.
func Register() {
	filestore.Register(filestore.PluginName, Factory)
}
