package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/classinfo/internal/errors"
)

// EntryKind tells how a classpath file is read
type EntryKind int

const (
	EntryClassFile EntryKind = iota
	EntryJar
)

func (k EntryKind) String() string {
	if k == EntryJar {
		return "jar"
	}
	return "class"
}

// ClasspathEntry is one readable file found under a classpath root
type ClasspathEntry struct {
	Path string
	Kind EntryKind
	Info fs.FileInfo
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// FileProcessor finds class files and jars under classpath roots
type FileProcessor struct{}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{}
}

// ClassFileFilter matches compiled class files, skipping module and package descriptors
func ClassFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, ".class") &&
			name != "module-info.class" &&
			name != "package-info.class"
	}
}

// JarFileFilter matches jar archives
func JarFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".jar")
	}
}

// ClasspathFilter matches class files, and jars when includeJars is set
func ClasspathFilter(includeJars bool) FileFilter {
	classes, jars := ClassFileFilter(), JarFileFilter()
	return func(path string, info fs.DirEntry) bool {
		return classes(path, info) || (includeJars && jars(path, info))
	}
}

// DefaultDirectoryFilter skips VCS metadata, hidden directories and dependency caches
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		".git":         true,
		".svn":         true,
		".hg":          true,
		".gradle":      true,
		".idea":        true,
		"node_modules": true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// WalkFiles walks a directory tree and returns the files matching the filter
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			// never filter out the root itself
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// ExpandClasspath turns classpath roots into the class files and jars they
// contain. A root may be a directory, a .class file or a .jar file.
func (fp *FileProcessor) ExpandClasspath(roots []string, includeJars bool) ([]ClasspathEntry, error) {
	filter := ClasspathFilter(includeJars)
	seen := make(map[string]bool)
	var entries []ClasspathEntry

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.WrapFileSystemError("resolve", path, err)
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true

		info, err := os.Stat(path)
		if err != nil {
			return errors.WrapFileSystemError("stat", path, err)
		}
		kind := EntryClassFile
		if JarFileFilter()(path, fs.FileInfoToDirEntry(info)) {
			kind = EntryJar
		}
		entries = append(entries, ClasspathEntry{Path: path, Kind: kind, Info: info})
		return nil
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", root, err).
				WithSuggestion("Check the classpath entries passed on the command line or in classinfo.yaml")
		}

		if !info.IsDir() {
			if !filter(root, fs.FileInfoToDirEntry(info)) {
				return nil, errors.ConfigurationError("classpath",
					"entry '"+root+"' is neither a directory, a .class file nor a .jar file")
			}
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}

		files, err := fp.WalkFiles(root, FileWalkOptions{
			FileFilter:      filter,
			DirectoryFilter: DefaultDirectoryFilter(),
		})
		if err != nil {
			return nil, errors.WrapFileSystemError("walk", root, err)
		}
		for _, file := range files {
			if err := add(file); err != nil {
				return nil, err
			}
		}
	}
	return entries, nil
}
