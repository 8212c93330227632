package classloader

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/typesig"
)

// DefaultCacheSize is the number of resolved handles a Loader keeps
const DefaultCacheSize = 1024

// ClassDefinition describes a class the loader can produce a handle for
type ClassDefinition struct {
	Name           string // binary name, e.g. "com.example.Outer$Inner"
	Kind           Kind
	TypeParameters []*typesig.TypeParameter
}

type classEntry struct {
	def  ClassDefinition
	init *classInit
}

// classInit is shared by every definition of a class name, so a redefinition
// never runs the initializer a second time
type classInit struct {
	fn   func() error
	once sync.Once
	err  error
}

func newClassEntry(def ClassDefinition) *classEntry {
	return &classEntry{def: def, init: &classInit{}}
}

// Loader is a Context over a fixed set of class definitions. It is safe for
// concurrent use. Each class initializer runs at most once; a failed
// initializer keeps failing every later lookup of that class.
type Loader struct {
	mu      sync.RWMutex
	classes map[string]*classEntry
	cache   *lru.Cache[string, *TypeHandle]
	logger  *zap.Logger
}

// Option configures a Loader
type Option func(*loaderOptions)

type loaderOptions struct {
	cacheSize int
	logger    *zap.Logger
	bootstrap []string
}

// WithCacheSize sets the handle cache size
func WithCacheSize(size int) Option {
	return func(o *loaderOptions) { o.cacheSize = size }
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *loaderOptions) { o.logger = logger }
}

// WithBootstrap adds class names that resolve without being defined
func WithBootstrap(names ...string) Option {
	return func(o *loaderOptions) { o.bootstrap = append(o.bootstrap, names...) }
}

// NewLoader creates a loader that knows the bootstrap JDK classes
func NewLoader(opts ...Option) (*Loader, error) {
	o := loaderOptions{cacheSize: DefaultCacheSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		return nil, errors.ConfigurationError("loader", fmt.Sprintf("cache size must be positive, got %d", o.cacheSize))
	}

	cache, err := lru.New[string, *TypeHandle](o.cacheSize)
	if err != nil {
		return nil, errors.WrapConfigurationError("loader", "create cache", err)
	}

	l := &Loader{
		classes: make(map[string]*classEntry, len(bootstrapClasses)+len(o.bootstrap)),
		cache:   cache,
		logger:  o.logger,
	}
	for name, kind := range bootstrapClasses {
		l.classes[name] = newClassEntry(ClassDefinition{Name: name, Kind: kind})
	}
	for _, name := range o.bootstrap {
		if _, ok := l.classes[name]; !ok {
			l.classes[name] = newClassEntry(ClassDefinition{Name: name, Kind: KindClass})
		}
	}
	return l, nil
}

// Define registers a class. Redefining a name replaces the earlier definition
// and forgets any cached handle for it; the initializer and its outcome carry over.
func (l *Loader) Define(def ClassDefinition) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := newClassEntry(def)
	if prev, ok := l.classes[def.Name]; ok {
		entry.init = prev.init
	}
	l.classes[def.Name] = entry
	l.cache.Remove(def.Name)
	l.logger.Debug("defined class", zap.String("class", def.Name), zap.Stringer("kind", def.Kind))
}

// DeclareTypeParameters records the type parameters of an already defined class
func (l *Loader) DeclareTypeParameters(className string, params []*typesig.TypeParameter) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.classes[className]
	if !ok {
		return errors.NewTypeNotFoundError(className)
	}
	entry.def.TypeParameters = params
	return nil
}

// OnInitialize sets the hook that runs the first time className is resolved.
// It stands in for a static initializer.
func (l *Loader) OnInitialize(className string, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.classes[className]
	if !ok {
		return errors.NewTypeNotFoundError(className)
	}
	entry.init.fn = fn
	return nil
}

// ClassNameToType resolves a binary class name, a primitive keyword, or an
// array type written with trailing "[]"
func (l *Loader) ClassNameToType(name string) (*TypeHandle, error) {
	if h, ok := Primitive(name); ok {
		return h, nil
	}
	if elem, dims := splitArray(name); dims > 0 {
		h, err := l.ClassNameToType(elem)
		if err != nil {
			return nil, err
		}
		return ArrayOf(h, dims), nil
	}

	if h, ok := l.cache.Get(name); ok {
		return h, nil
	}

	l.mu.RLock()
	entry, ok := l.classes[name]
	l.mu.RUnlock()
	if !ok {
		return nil, errors.NewTypeNotFoundError(name)
	}

	ci := entry.init
	ci.once.Do(func() {
		if ci.fn == nil {
			return
		}
		l.logger.Debug("initializing class", zap.String("class", name))
		if err := ci.fn(); err != nil {
			ci.err = err
			l.logger.Warn("class initializer failed", zap.String("class", name), zap.Error(err))
		}
	})
	if ci.err != nil {
		err := errors.WrapResolutionError(name, ci.err)
		err.WithSuggestion(fmt.Sprintf("Initializer of '%s' failed; the class cannot be used", name))
		return nil, err
	}

	h := &TypeHandle{Name: entry.def.Name, Kind: entry.def.Kind}
	l.cache.Add(name, h)
	return h, nil
}

// ClassTypeParameters returns the type parameters declared by className
func (l *Loader) ClassTypeParameters(className string) ([]*typesig.TypeParameter, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.classes[className]
	if !ok || len(entry.def.TypeParameters) == 0 {
		return nil, false
	}
	return entry.def.TypeParameters, true
}

// IsDefined reports whether name resolves without consulting initializers
func (l *Loader) IsDefined(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.classes[name]
	return ok
}

// Cached returns the number of handles currently cached
func (l *Loader) Cached() int {
	return l.cache.Len()
}

func splitArray(name string) (string, int) {
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		dims++
	}
	return name, dims
}

// bootstrapClasses resolve on every loader, like classes of the platform class loader
var bootstrapClasses = map[string]Kind{
	"java.lang.Object":                      KindClass,
	"java.lang.String":                      KindClass,
	"java.lang.Class":                       KindClass,
	"java.lang.Enum":                        KindClass,
	"java.lang.Record":                      KindClass,
	"java.lang.Number":                      KindClass,
	"java.lang.Boolean":                     KindClass,
	"java.lang.Byte":                        KindClass,
	"java.lang.Character":                   KindClass,
	"java.lang.Short":                       KindClass,
	"java.lang.Integer":                     KindClass,
	"java.lang.Long":                        KindClass,
	"java.lang.Float":                       KindClass,
	"java.lang.Double":                      KindClass,
	"java.lang.Void":                        KindClass,
	"java.lang.Throwable":                   KindClass,
	"java.lang.Exception":                   KindClass,
	"java.lang.RuntimeException":            KindClass,
	"java.lang.Error":                       KindClass,
	"java.lang.IllegalArgumentException":    KindClass,
	"java.lang.IllegalStateException":       KindClass,
	"java.lang.InterruptedException":        KindClass,
	"java.lang.CloneNotSupportedException":  KindClass,
	"java.lang.Comparable":                  KindInterface,
	"java.lang.CharSequence":                KindInterface,
	"java.lang.Iterable":                    KindInterface,
	"java.lang.Runnable":                    KindInterface,
	"java.lang.AutoCloseable":               KindInterface,
	"java.lang.Override":                    KindAnnotation,
	"java.lang.Deprecated":                  KindAnnotation,
	"java.lang.FunctionalInterface":         KindAnnotation,
	"java.lang.SafeVarargs":                 KindAnnotation,
	"java.lang.SuppressWarnings":            KindAnnotation,
	"java.lang.annotation.Retention":        KindAnnotation,
	"java.lang.annotation.Target":           KindAnnotation,
	"java.lang.annotation.Documented":       KindAnnotation,
	"java.io.Serializable":                  KindInterface,
	"java.io.Closeable":                     KindInterface,
	"java.io.IOException":                   KindClass,
	"java.io.UncheckedIOException":          KindClass,
	"java.util.Collection":                  KindInterface,
	"java.util.List":                        KindInterface,
	"java.util.Set":                         KindInterface,
	"java.util.Map":                         KindInterface,
	"java.util.Iterator":                    KindInterface,
	"java.util.Optional":                    KindClass,
	"java.util.ArrayList":                   KindClass,
	"java.util.HashMap":                     KindClass,
	"java.util.AbstractMap":                 KindClass,
	"java.util.concurrent.Callable":         KindInterface,
	"java.util.concurrent.Future":           KindInterface,
	"java.util.concurrent.TimeoutException": KindClass,
	"java.util.function.Function":           KindInterface,
	"java.util.function.Supplier":           KindInterface,
	"java.util.function.Consumer":           KindInterface,
	"java.util.function.Predicate":          KindInterface,
}
