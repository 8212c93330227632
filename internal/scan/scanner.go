// Package scan reads class files and jars from a classpath and collects the
// methods they declare.
package scan

import (
	"archive/zip"
	"context"
	stderrors "errors"
	"io"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/classinfo/internal/classfile"
	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/utils"
)

// Scanner finds class files under classpath roots and parses them on a
// bounded worker pool. Parsed files are cached by path and reused while
// their size and modification time do not change.
type Scanner struct {
	workers     int
	includeJars bool
	logger      *zap.Logger
	loaderOpts  []classloader.Option
	files       *utils.FileProcessor
	cache       *utils.Cache[string, []*classfile.ClassFile]
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets how many files are parsed concurrently
func WithWorkers(n int) Option {
	return func(s *Scanner) { s.workers = n }
}

// WithJars controls whether .jar files are opened
func WithJars(include bool) Option {
	return func(s *Scanner) { s.includeJars = include }
}

// WithLogger sets the structured logger, which is also handed to the loader
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithLoaderOptions passes options to the classloader built for each result
func WithLoaderOptions(opts ...classloader.Option) Option {
	return func(s *Scanner) { s.loaderOpts = append(s.loaderOpts, opts...) }
}

// NewScanner creates a scanner. Workers default to the number of CPUs.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		workers:     runtime.NumCPU(),
		includeJars: true,
		logger:      zap.NewNop(),
		files:       utils.NewFileProcessor(),
		cache:       utils.NewCache[string, []*classfile.ClassFile](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers <= 0 {
		s.workers = 1
	}
	return s
}

// CacheStats reports how often parsed files were reused
func (s *Scanner) CacheStats() utils.CacheStats {
	return s.cache.GetStats()
}

type fileResult struct {
	classes []*classfile.ClassFile
	errs    []errors.ClassinfoError
}

// Scan reads every class file and jar under roots. Unreadable or malformed
// files are collected in Result.Errors and do not stop the scan; a missing
// root, a bad loader configuration or a cancelled ctx does.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*Result, error) {
	entries, err := s.files.ExpandClasspath(roots, s.includeJars)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("expanded classpath", zap.Strings("roots", roots), zap.Int("files", len(entries)))

	results := make([]fileResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.load(entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaderOpts := append([]classloader.Option{classloader.WithLogger(s.logger)}, s.loaderOpts...)
	loader, err := classloader.NewLoader(loaderOpts...)
	if err != nil {
		return nil, err
	}
	return newResult(loader, len(entries), results, s.logger), nil
}

func (s *Scanner) load(entry utils.ClasspathEntry) fileResult {
	if classes, ok := s.cache.GetValid(entry.Path, entry.Info); ok {
		s.logger.Debug("reused parsed file", zap.String("path", entry.Path))
		return fileResult{classes: classes}
	}

	var res fileResult
	if entry.Kind == utils.EntryJar {
		res = s.loadJar(entry.Path)
	} else {
		res = s.loadClassFile(entry.Path)
	}
	if len(res.errs) == 0 {
		s.cache.SetWithFileInfo(entry.Path, res.classes, entry.Info)
	}
	return res
}

func (s *Scanner) loadClassFile(path string) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{errs: []errors.ClassinfoError{errors.WrapFileSystemError("read", path, err)}}
	}
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return fileResult{errs: []errors.ClassinfoError{locate(err, path, "")}}
	}
	s.logger.Debug("read class file", zap.String("path", path), zap.String("class", cf.ClassName),
		zap.Int("methods", len(cf.Methods)))
	return fileResult{classes: []*classfile.ClassFile{cf}}
}

func (s *Scanner) loadJar(path string) fileResult {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fileResult{errs: []errors.ClassinfoError{errors.WrapFileSystemError("open jar", path, err)}}
	}
	defer zr.Close()

	var res fileResult
	for _, f := range zr.File {
		if !isJarClass(f.Name) {
			continue
		}
		cf, err := readJarEntry(f)
		if err != nil {
			res.errs = append(res.errs, locate(err, path, f.Name))
			continue
		}
		res.classes = append(res.classes, cf)
	}
	s.logger.Debug("read jar", zap.String("path", path), zap.Int("classes", len(res.classes)),
		zap.Int("errors", len(res.errs)))
	return res
}

func readJarEntry(f *zip.File) (*classfile.ClassFile, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, utils.WrapProcessError("jar entry "+f.Name, err)
	}
	defer rc.Close()
	return classfile.Parse(io.LimitReader(rc, int64(f.UncompressedSize64)+1))
}

// isJarClass skips directories, descriptors and versioned or other META-INF entries
func isJarClass(name string) bool {
	if !strings.HasSuffix(name, ".class") || strings.HasPrefix(name, "META-INF/") {
		return false
	}
	base := name[strings.LastIndexByte(name, '/')+1:]
	return base != "module-info.class" && base != "package-info.class"
}

// locate attaches the file and jar entry to err
func locate(err error, path, entry string) errors.ClassinfoError {
	var cfErr *errors.ClassfileError
	if stderrors.As(err, &cfErr) {
		loc := cfErr.Location()
		loc.File, loc.Entry = path, entry
		return cfErr.WithLocation(loc)
	}
	item := path
	if entry != "" {
		item = path + "!" + entry
	}
	return errors.WrapFileSystemError("read", item, err)
}
