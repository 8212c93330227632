package utils

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out
}

func TestFileProcessor_WalkFiles(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, []string{
		"com/example/Foo.class",
		"com/example/Foo$Inner.class",
		"com/example/package-info.class",
		"module-info.class",
		"com/example/Foo.java",
		"build/classes/Bar.class",
		".git/objects/Baz.class",
		".hidden/Qux.class",
		"node_modules/x/Y.class",
		"lib/guava.jar",
	})

	fp := NewFileProcessor()
	files, err := fp.WalkFiles(root, FileWalkOptions{
		FileFilter:      ClassFileFilter(),
		DirectoryFilter: DefaultDirectoryFilter(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"build/classes/Bar.class",
		"com/example/Foo$Inner.class",
		"com/example/Foo.class",
	}, relative(t, root, files))

	files, err = fp.WalkFiles(root, FileWalkOptions{
		FileFilter:      ClasspathFilter(true),
		DirectoryFilter: DefaultDirectoryFilter(),
	})
	require.NoError(t, err)
	assert.Contains(t, relative(t, root, files), "lib/guava.jar")
}

func TestFileProcessor_WalkFiles_MissingRoot(t *testing.T) {
	fp := NewFileProcessor()
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := fp.WalkFiles(missing, FileWalkOptions{})
	assert.Error(t, err)

	files, err := fp.WalkFiles(missing, FileWalkOptions{SkipErrors: true})
	assert.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileProcessor_ExpandClasspath(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, []string{
		"classes/com/example/A.class",
		"classes/com/example/B.class",
		"lib/dep.jar",
		"notes.txt",
	})

	fp := NewFileProcessor()
	entries, err := fp.ExpandClasspath([]string{
		filepath.Join(root, "classes"),
		filepath.Join(root, "lib", "dep.jar"),
		filepath.Join(root, "classes", "com", "example", "A.class"), // duplicate
	}, true)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	kinds := map[EntryKind]int{}
	for _, e := range entries {
		kinds[e.Kind]++
		assert.NotNil(t, e.Info)
	}
	assert.Equal(t, 2, kinds[EntryClassFile])
	assert.Equal(t, 1, kinds[EntryJar])
	assert.Equal(t, "jar", EntryJar.String())
	assert.Equal(t, "class", EntryClassFile.String())
}

func TestFileProcessor_ExpandClasspath_Errors(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, []string{"notes.txt", "lib/dep.jar"})
	fp := NewFileProcessor()

	_, err := fp.ExpandClasspath([]string{filepath.Join(root, "missing")}, true)
	assert.Error(t, err)

	_, err = fp.ExpandClasspath([]string{filepath.Join(root, "notes.txt")}, true)
	assert.Error(t, err)

	// jars are not accepted as roots when jar scanning is off
	_, err = fp.ExpandClasspath([]string{filepath.Join(root, "lib", "dep.jar")}, false)
	assert.Error(t, err)
}
