package testutil

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/roach88/apigraph/internal/workspace"
)

// FS turns a path -> content map into an in-memory file system.
func FS(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for p, content := range files {
		fsys[p] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

// Workspace loads files through the real loader and fails the test on
// any load error. A missing api.yml is added with the name "test".
func Workspace(t testing.TB, files map[string]string) *workspace.Workspace {
	t.Helper()
	if !hasRoot(files) {
		withRoot := make(map[string]string, len(files)+1)
		for p, c := range files {
			withRoot[p] = c
		}
		withRoot["api.yml"] = "name: test\n"
		files = withRoot
	}
	ws, err := workspace.LoadFS(FS(files), "test")
	require.NoError(t, err)
	return ws
}

func hasRoot(files map[string]string) bool {
	for _, name := range workspace.RootFiles {
		if _, ok := files[name]; ok {
			return true
		}
	}
	return false
}
