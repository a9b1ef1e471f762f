package resolve

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createProject lays out files (and empty directories, for names ending in
// "/") under a fresh temporary directory.
func createProject(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("export default {};\n"), 0o644), "failed to create file %s", name)
	}
	return root
}

func componentProject(t *testing.T) string {
	return createProject(t,
		"dir_with_file/dir_with_file.jsx",
		"dir_with_few_files/dir_with_few_files.js",
		"dir_with_few_files/dir_with_few_files.jsx",
		"dir_with_file_and_component/component.js",
		"dir_with_file_and_component/component/component.jsx",
		"node_modules/react/react.js",
		"dir_without_file/",
		"plain.js",
	)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

func resolveGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
}

func TestResolveCommand_Text(t *testing.T) {
	root := componentProject(t)

	out, err := execute(t, "-b", root, "--relative",
		"dir_with_file?qwerty",
		"dir_with_few_files",
		"dir_with_file_and_component/component",
		"node_modules/react",
		"dir_without_file",
		"plain.js",
	)

	require.NoError(t, err)
	resolveGoldie(t).Assert(t, "resolve_text", []byte(out))
}

func TestResolveCommand_JSON(t *testing.T) {
	root := componentProject(t)

	out, err := execute(t, "-b", root, "--relative", "-f", "json", "-q", "qwerty",
		"dir_with_file",
		"dir_without_file",
	)

	require.NoError(t, err)
	resolveGoldie(t).Assert(t, "resolve_json", []byte(out))
}

func TestResolveCommand_AbsolutePaths(t *testing.T) {
	root := componentProject(t)

	out, err := execute(t, "-b", root, "dir_with_file")

	require.NoError(t, err)
	expected := filepath.Join(root, "dir_with_file", "dir_with_file.jsx")
	assert.Equal(t, "dir_with_file -> "+expected+"\n", out)
}

func TestResolveCommand_ExtensionsWithoutMatch(t *testing.T) {
	root := componentProject(t)

	out, err := execute(t, "-b", root, "-e", "ts,cljs", "dir_with_few_files")

	require.NoError(t, err)
	assert.Equal(t, "dir_with_few_files -> unresolved\n", out)
}

func TestResolveCommand_ConfigFile(t *testing.T) {
	root := componentProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".compresolve.yaml"), []byte("extensions: [jsx, js]\n"), 0o644))

	out, err := execute(t, "-b", root, "--relative", "dir_with_few_files")
	require.NoError(t, err)
	assert.Equal(t, "dir_with_few_files -> dir_with_few_files/dir_with_few_files.jsx\n", out)

	out, err = execute(t, "-b", root, "--relative", "-e", "js", "dir_with_few_files")
	require.NoError(t, err)
	assert.Equal(t, "dir_with_few_files -> dir_with_few_files/dir_with_few_files.js\n", out)
}

func TestResolveCommand_ExplicitConfigPath(t *testing.T) {
	root := componentProject(t)
	cfgPath := filepath.Join(t.TempDir(), "resolver.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("vendorDir: vendor\n"), 0o644))

	out, err := execute(t, "-b", root, "--relative", "-c", cfgPath, "node_modules/react")

	require.NoError(t, err)
	assert.Equal(t, "node_modules/react -> node_modules/react/react.js\n", out)
}

func TestResolveCommand_RejectsHookThatCannotReachFile(t *testing.T) {
	root := componentProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".compresolve.yaml"), []byte("hook: file\n"), 0o644))

	out, err := execute(t, "-b", root, "dir_with_file")

	assert.ErrorContains(t, err, "cannot reach the file hook")
	assert.Empty(t, out)
}

func TestResolveCommand_RejectsUnknownFormat(t *testing.T) {
	root := componentProject(t)

	_, err := execute(t, "-b", root, "-f", "xml", "dir_with_file")

	assert.ErrorContains(t, err, "unknown format")
}

func TestResolveCommand_RejectsInvalidExtension(t *testing.T) {
	root := componentProject(t)

	_, err := execute(t, "-b", root, "-e", "js,a/b", "dir_with_file")

	assert.ErrorContains(t, err, "invalid extension")
}

func TestResolveCommand_RequiresRequest(t *testing.T) {
	_, err := execute(t)

	assert.Error(t, err)
}
