package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/config"
	"github.com/jmgilman/go/filestore/errors"
)

// newTestApp returns an App bound to a local store in a temp dir and the
// directory itself.
func newTestApp(t *testing.T) (*App, string) {
	t.Helper()

	cfg := config.Default()
	cfg.UsePlugin = config.PolicyLocal
	cfg.LocalRoot = t.TempDir()
	cfg.Share = "ABC"
	cfg.NonInteractive = true

	app := &App{
		Resolver: filestore.NewResolver(
			filestore.WithConfig(cfg),
			filestore.WithRegistry(filestore.NewRegistry()),
		),
	}
	return app, cfg.LocalRoot
}

// execute runs the command tree with args and returns standard output.
func execute(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPutAndCat(t *testing.T) {
	app, dir := newTestApp(t)

	_, err := execute(t, app, "hello\n", "put", `\\fileserver\ABC\docs\a.txt`)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "docs", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	_, err = execute(t, app, "again", "put", "docs/a.txt")
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyExists))

	_, err = execute(t, app, "again", "put", "--overwrite", "docs/a.txt")
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("from file"), 0o644))
	_, err = execute(t, app, "", "put", "--from", src, "docs/b.txt")
	require.NoError(t, err)

	out, err := execute(t, app, "", "cat", "docs/a.txt", "docs/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "againfrom file", out)

	_, err = execute(t, app, "", "cat", "docs/missing.txt")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	_, err = execute(t, app, "", "put", "--from", filepath.Join(dir, "nope"), "x.txt")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestLs(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := execute(t, app, "12345", "put", "d/file.txt")
	require.NoError(t, err)
	_, err = execute(t, app, "", "mkdir", "d/sub")
	require.NoError(t, err)

	out, err := execute(t, app, "", "ls", "d")
	require.NoError(t, err)
	assert.Equal(t, "file.txt\nsub\n", out)

	out, err = execute(t, app, "", "ls")
	require.NoError(t, err)
	assert.Equal(t, "d\n", out)

	out, err = execute(t, app, "", "ls", "-l", "d")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"KIND", "SIZE", "MODIFIED", "NAME"}, strings.Fields(lines[0]))
	file := strings.Fields(lines[1])
	assert.Equal(t, "file", file[0])
	assert.Equal(t, "5", file[1])
	assert.Equal(t, "file.txt", file[3])
	sub := strings.Fields(lines[2])
	assert.Equal(t, "dir", sub[0])
	assert.Equal(t, "-", sub[1])
	assert.Equal(t, "sub", sub[3])
}

func TestStat(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := execute(t, app, "abc", "put", "s.txt")
	require.NoError(t, err)

	out, err := execute(t, app, "", "stat", "s.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "path:     s.txt\n")
	assert.Contains(t, out, "kind:     file\n")
	assert.Contains(t, out, "size:     3\n")

	out, err = execute(t, app, "", "stat", "/")
	require.NoError(t, err)
	assert.Contains(t, out, "path:     /\n")
	assert.Contains(t, out, "kind:     dir\n")
}

func TestMoveCopyRemove(t *testing.T) {
	app, dir := newTestApp(t)
	_, err := execute(t, app, "data", "put", "a/one.txt")
	require.NoError(t, err)

	_, err = execute(t, app, "", "cp", "a/one.txt", "a/two.txt")
	require.NoError(t, err)
	_, err = execute(t, app, "", "mv", "a", "b")
	require.NoError(t, err)

	out, err := execute(t, app, "", "ls", "b")
	require.NoError(t, err)
	assert.Equal(t, "one.txt\ntwo.txt\n", out)
	assert.NoDirExists(t, filepath.Join(dir, "a"))

	_, err = execute(t, app, "", "rm", "b/one.txt")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "b", "one.txt"))

	_, err = execute(t, app, "", "rm", "-d", "b")
	assert.True(t, errors.HasCode(err, errors.CodeDirectoryNotEmpty))

	_, err = execute(t, app, "", "rm", "-r", "-d", "b")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = execute(t, app, "", "rm", "-r", "b")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, "b"))

	_, err = execute(t, app, "", "mkdir", "e")
	require.NoError(t, err)
	_, err = execute(t, app, "", "rm", "-d", "e")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, "e"))

	_, err = execute(t, app, "", "rm", "-r", "/")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidPath))
}

func TestFind(t *testing.T) {
	app, _ := newTestApp(t)
	for _, p := range []string{"r/a.csv", "r/x/b.csv", "r/x/c.txt"} {
		_, err := execute(t, app, "", "put", p)
		require.NoError(t, err)
	}

	out, err := execute(t, app, "", "find", "r/**/*.csv")
	require.NoError(t, err)
	assert.Equal(t, "r/a.csv\nr/x/b.csv\n", out)

	out, err = execute(t, app, "", "find", "nothing/*")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCaps(t *testing.T) {
	app, dir := newTestApp(t)

	out, err := execute(t, app, "", "caps")
	require.NoError(t, err)
	assert.Contains(t, out, "mode:")
	assert.Contains(t, out, "local:"+dir)
	assert.Contains(t, out, "provider:")
	assert.Contains(t, out, "rename")
}

func TestNormalize(t *testing.T) {
	app, _ := newTestApp(t)

	out, err := execute(t, app, "", "normalize",
		`\\fileserver\ABC\dir\x.txt`, "file:///C:/abc/y%20z.txt", ".")
	require.NoError(t, err)
	assert.Equal(t, "dir/x.txt\ny z.txt\n/\n", out)

	_, err = execute(t, app, "", "normalize", "../up")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidPath))
}

func TestArgs(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := execute(t, app, "", "mv", "only-one")
	assert.Error(t, err)

	_, err = execute(t, app, "", "caps", "extra")
	assert.Error(t, err)
}
