package scan

import (
	stderrors "errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/classfile"
	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/models"
	"github.com/toyz/classinfo/internal/query"
)

// Result holds everything one scan found. It is read-only and safe for
// concurrent use.
type Result struct {
	ID        uuid.UUID
	ScannedAt time.Time

	files   int
	classes map[string]*classfile.ClassFile
	names   []string
	methods []*models.MethodInfo
	byClass map[string][]*models.MethodInfo
	loader  *classloader.Loader
	errs    *errors.MultipleErrors
}

// newResult merges per-file results in classpath order. When two files
// define the same class the first one wins, as on a JVM classpath.
func newResult(loader *classloader.Loader, files int, results []fileResult, logger *zap.Logger) *Result {
	r := &Result{
		ID:        uuid.New(),
		ScannedAt: time.Now(),
		files:     files,
		classes:   make(map[string]*classfile.ClassFile),
		byClass:   make(map[string][]*models.MethodInfo),
		loader:    loader,
	}

	var all []*models.MethodInfo
	for _, fr := range results {
		for _, e := range fr.errs {
			errors.AddToMultiple(&r.errs, e)
		}
		for _, cf := range fr.classes {
			if _, dup := r.classes[cf.ClassName]; dup {
				logger.Debug("class shadowed by earlier classpath entry", zap.String("class", cf.ClassName))
				continue
			}
			r.classes[cf.ClassName] = cf
			r.names = append(r.names, cf.ClassName)

			loader.Define(cf.Definition())
			if _, err := cf.ClassSignature(); err != nil {
				var ce errors.ClassinfoError
				if stderrors.As(err, &ce) {
					errors.AddToMultiple(&r.errs, ce)
				}
			}
			all = append(all, cf.MethodInfos()...)
		}
	}

	slices.Sort(r.names)
	r.methods = models.DedupeMethods(all)
	for _, m := range r.methods {
		r.byClass[m.ClassName()] = append(r.byClass[m.ClassName()], m)
	}
	return r
}

// Files returns how many class files and jars were read
func (r *Result) Files() int { return r.files }

// Methods returns every method, deduplicated and in (class, name, descriptor) order
func (r *Result) Methods() []*models.MethodInfo {
	return slices.Clone(r.methods)
}

// MethodsOf returns the methods of the class with the given binary name
func (r *Result) MethodsOf(className string) []*models.MethodInfo {
	return slices.Clone(r.byClass[className])
}

// Classes returns the binary names of every scanned class, sorted
func (r *Result) Classes() []string {
	return slices.Clone(r.names)
}

// Class returns the parsed class file for a binary name
func (r *Result) Class(className string) (*classfile.ClassFile, bool) {
	cf, ok := r.classes[className]
	return cf, ok
}

// Find returns the methods matched by q, in sorted order
func (r *Result) Find(q *query.MethodQuery) []*models.MethodInfo {
	return q.Filter(r.methods)
}

// Loader returns a classloader with every scanned class defined, for use
// as the resolution context of the methods
func (r *Result) Loader() *classloader.Loader {
	return r.loader
}

// Errors returns the per-file failures of the scan, or nil
func (r *Result) Errors() error {
	return r.errs.ErrorOrNil()
}
