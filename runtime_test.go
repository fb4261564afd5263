package filestore_test

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/config"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/fs/local"
	"github.com/jmgilman/go/filestore/internal/logging"
	"github.com/jmgilman/go/filestore/metrics"
	"github.com/jmgilman/go/filestore/secrets"
)

func testConfig(t *testing.T, policy config.PluginPolicy) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.UsePlugin = policy
	cfg.LocalRoot = t.TempDir()
	cfg.NonInteractive = true
	return cfg
}

func failingPlugin(filestore.PluginContext) (filestore.Plugin, error) {
	return filestore.Plugin{}, stderrors.New("backend unreachable")
}

func panickingPlugin(filestore.PluginContext) (filestore.Plugin, error) {
	panic("boom")
}

func registryWith(name string, f filestore.Factory) *filestore.Registry {
	reg := filestore.NewRegistry()
	if f != nil {
		reg.Register(name, f)
	}
	return reg
}

func TestResolver_ForcedLocal(t *testing.T) {
	cfg := testConfig(t, config.PolicyLocal)
	r := filestore.NewResolver(
		filestore.WithConfig(cfg),
		filestore.WithRegistry(registryWith(filestore.PluginName, memoryPlugin)),
	)
	assert.Equal(t, filestore.ModeUndetermined, r.Mode())

	p, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, filestore.ModeLocal, p.Mode)
	assert.Equal(t, "local:"+cfg.LocalRoot, p.Source)
	assert.Equal(t, core.FSTypeLocal, p.Store.Provider().Type())
	assert.Equal(t, filestore.ModeLocal, r.Mode())

	again, err := r.Get()
	require.NoError(t, err)
	assert.Same(t, p, again, "resolution is cached")
}

func TestResolver_ForcedPlugin(t *testing.T) {
	t.Run("binds", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
			filestore.WithRegistry(registryWith(filestore.PluginName, memoryPlugin)),
		)
		p, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, filestore.ModePlugin, p.Mode)
		assert.Equal(t, "plugin:"+filestore.PluginName, p.Source)
		assert.Equal(t, "memory-plugin", p.Store.Provider().Name())
	})

	t.Run("missing", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
			filestore.WithRegistry(registryWith("", nil)),
		)
		_, err := r.Get()
		assert.Equal(t, errors.CodePluginLoadFailure, errors.GetCode(err))
		assert.Equal(t, filestore.ModeUndetermined, r.Mode())
	})

	t.Run("factory error", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
			filestore.WithRegistry(registryWith(filestore.PluginName, failingPlugin)),
		)
		_, err := r.Get()
		assert.Equal(t, errors.CodePluginLoadFailure, errors.GetCode(err))
		assert.Contains(t, err.Error(), "backend unreachable")
	})

	t.Run("panic with debug", func(t *testing.T) {
		cfg := testConfig(t, config.PolicyPlugin)
		cfg.DebugPlugin = true
		r := filestore.NewResolver(
			filestore.WithConfig(cfg),
			filestore.WithRegistry(registryWith(filestore.PluginName, panickingPlugin)),
		)
		_, err := r.Get()
		require.Error(t, err)
		assert.Equal(t, errors.CodePluginLoadFailure, errors.GetCode(err))

		var pe errors.PlatformError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "boom", pe.Context()["panic"])
		assert.NotEmpty(t, pe.Context()["stack"])
	})

	t.Run("nil store", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
			filestore.WithRegistry(registryWith(filestore.PluginName,
				func(filestore.PluginContext) (filestore.Plugin, error) { return filestore.Plugin{}, nil })),
		)
		_, err := r.Get()
		assert.Equal(t, errors.CodePluginLoadFailure, errors.GetCode(err))
	})

	t.Run("fallback", func(t *testing.T) {
		cfg := testConfig(t, config.PolicyPlugin)
		cfg.PluginFallback = true
		var logs bytes.Buffer
		r := filestore.NewResolver(
			filestore.WithConfig(cfg),
			filestore.WithRegistry(registryWith(filestore.PluginName, failingPlugin)),
			filestore.WithResolverLogger(logging.New(&logs, slog.LevelWarn)),
		)
		p, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, filestore.ModeLocal, p.Mode)
		assert.Contains(t, logs.String(), "code=PLUGIN_LOAD_FAILURE")
	})
}

func TestResolver_Auto(t *testing.T) {
	t.Run("no plugin", func(t *testing.T) {
		var logs bytes.Buffer
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyAuto)),
			filestore.WithRegistry(registryWith("", nil)),
			filestore.WithResolverLogger(logging.New(&logs, slog.LevelWarn)),
		)
		p, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, filestore.ModeLocal, p.Mode)
		assert.Empty(t, logs.String(), "a missing plugin is not worth a warning")
	})

	t.Run("plugin", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyAuto)),
			filestore.WithRegistry(registryWith(filestore.PluginName, memoryPlugin)),
		)
		p, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, filestore.ModePlugin, p.Mode)
	})

	for name, f := range map[string]filestore.Factory{
		"failing plugin":   failingPlugin,
		"panicking plugin": panickingPlugin,
	} {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			r := filestore.NewResolver(
				filestore.WithConfig(testConfig(t, config.PolicyAuto)),
				filestore.WithRegistry(registryWith(filestore.PluginName, f)),
				filestore.WithResolverLogger(logging.New(&logs, slog.LevelWarn)),
			)
			p, err := r.Get()
			require.NoError(t, err)
			assert.Equal(t, filestore.ModeLocal, p.Mode)
			assert.Contains(t, logs.String(), "level=WARN")
			assert.NotContains(t, logs.String(), "stack=", "terse warning without debug")
		})
	}

	t.Run("custom name", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyAuto)),
			filestore.WithPluginName("custom"),
			filestore.WithRegistry(registryWith("custom", memoryPlugin)),
		)
		p, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, "plugin:custom", p.Source)
	})
}

func TestResolver_FailureNotCached(t *testing.T) {
	reg := registryWith("", nil)
	r := filestore.NewResolver(
		filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
		filestore.WithRegistry(reg),
	)
	_, err := r.Get()
	require.Error(t, err)

	reg.Register(filestore.PluginName, memoryPlugin)
	p, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, filestore.ModePlugin, p.Mode)
}

func TestResolver_Reset(t *testing.T) {
	r := filestore.NewResolver(filestore.WithConfig(testConfig(t, config.PolicyLocal)))
	first, err := r.Get()
	require.NoError(t, err)

	r.Reset()
	assert.Equal(t, filestore.ModeUndetermined, r.Mode())

	second, err := r.Get()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestResolver_Concurrent(t *testing.T) {
	calls := 0
	reg := registryWith(filestore.PluginName, func(pc filestore.PluginContext) (filestore.Plugin, error) {
		calls++
		return memoryPlugin(pc)
	})
	r := filestore.NewResolver(
		filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
		filestore.WithRegistry(reg),
	)

	var wg sync.WaitGroup
	results := make([]*filestore.Providers, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = r.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestResolver_Secrets(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyLocal)),
			filestore.WithSecrets(secrets.Static{secrets.Host: "files.example.com"}),
		)
		p, err := r.Get()
		require.NoError(t, err)
		host, err := p.Secrets.Get(secrets.Host)
		require.NoError(t, err)
		assert.Equal(t, "files.example.com", host)
	})

	t.Run("plugin overrides", func(t *testing.T) {
		var seen secrets.Provider
		r := filestore.NewResolver(
			filestore.WithConfig(testConfig(t, config.PolicyPlugin)),
			filestore.WithSecrets(secrets.Static{secrets.Host: "local"}),
			filestore.WithRegistry(registryWith(filestore.PluginName,
				func(pc filestore.PluginContext) (filestore.Plugin, error) {
					seen = pc.Secrets
					return filestore.Plugin{
						Store:   local.NewMemory(),
						Secrets: secrets.Static{secrets.Host: "plugin"},
					}, nil
				})),
		)
		p, err := r.Get()
		require.NoError(t, err)

		host, err := p.Secrets.Get(secrets.Host)
		require.NoError(t, err)
		assert.Equal(t, "plugin", host)

		host, err = seen.Get(secrets.Host)
		require.NoError(t, err)
		assert.Equal(t, "local", host, "the factory sees the local chain")
	})

	t.Run("env chain", func(t *testing.T) {
		t.Setenv("FILESTORE_TOKEN", "from-env")
		r := filestore.NewResolver(filestore.WithConfig(testConfig(t, config.PolicyLocal)))
		p, err := r.Get()
		require.NoError(t, err)

		token, err := p.Secrets.Get(secrets.Token)
		require.NoError(t, err)
		assert.Equal(t, "from-env", token)

		_, err = p.Secrets.Get("never_set_anywhere")
		assert.True(t, secrets.IsNotProvided(err))
	})
}

func TestResolver_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := filestore.NewResolver(
		filestore.WithConfig(testConfig(t, config.PolicyLocal)),
		filestore.WithMetrics(m),
	)
	p, err := r.Get()
	require.NoError(t, err)

	_, ok := p.Store.Provider().(*metrics.Instrumented)
	assert.True(t, ok)
	require.NoError(t, p.Store.WriteBytes("m.txt", []byte("m"), true))
}

func TestResolver_Share(t *testing.T) {
	cfg := testConfig(t, config.PolicyLocal)
	cfg.Share = "ABC"
	r := filestore.NewResolver(filestore.WithConfig(cfg))
	p, err := r.Get()
	require.NoError(t, err)

	require.NoError(t, p.Store.WriteBytes(`\\srv\ABC\x.txt`, []byte("x"), true))
	ok, err := p.Store.Exists("x.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDefault(t *testing.T) {
	t.Cleanup(filestore.ResetDefault)

	t.Run("from environment", func(t *testing.T) {
		filestore.ResetDefault()
		root := t.TempDir()
		t.Setenv(config.EnvUsePlugin, "0")
		t.Setenv(config.EnvLocalRoot, root)
		t.Setenv(config.EnvNonInteractive, "1")

		s, err := filestore.ActiveStore()
		require.NoError(t, err)
		assert.Equal(t, local.Name, s.Provider().Name())
		assert.Equal(t, filestore.ModeLocal, filestore.Default().Mode())
		assert.Equal(t, root, filestore.Default().Config().LocalRoot)

		sec, err := filestore.ActiveSecrets()
		require.NoError(t, err)
		assert.NotNil(t, sec)
	})

	t.Run("invalid environment", func(t *testing.T) {
		filestore.ResetDefault()
		t.Setenv(config.EnvUsePlugin, "sometimes")

		_, err := filestore.Active()
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("set default", func(t *testing.T) {
		r := filestore.NewResolver(filestore.WithConfig(testConfig(t, config.PolicyLocal)))
		filestore.SetDefault(r)
		assert.Same(t, r, filestore.Default())
	})
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "undetermined", filestore.ModeUndetermined.String())
	assert.Equal(t, "local", filestore.ModeLocal.String())
	assert.Equal(t, "plugin", filestore.ModePlugin.String())
}
