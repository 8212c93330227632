package classloader

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/typesig"
)

func newTestLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	l, err := NewLoader(opts...)
	require.NoError(t, err)
	return l
}

func TestLoader_Bootstrap(t *testing.T) {
	l := newTestLoader(t)

	h, err := l.ClassNameToType("java.lang.String")
	require.NoError(t, err)
	assert.Equal(t, "java.lang.String", h.Name)
	assert.Equal(t, KindClass, h.Kind)

	h, err = l.ClassNameToType("java.util.List")
	require.NoError(t, err)
	assert.Equal(t, KindInterface, h.Kind)
}

func TestLoader_Primitives(t *testing.T) {
	l := newTestLoader(t)

	h, err := l.ClassNameToType("int")
	require.NoError(t, err)
	assert.Same(t, Int, h)

	h, err = l.ClassNameToType("void")
	require.NoError(t, err)
	assert.Same(t, Void, h)
	assert.False(t, h.IsPrimitive())
}

func TestLoader_Arrays(t *testing.T) {
	l := newTestLoader(t)

	h, err := l.ClassNameToType("java.lang.String[][]")
	require.NoError(t, err)
	assert.Equal(t, KindArray, h.Kind)
	assert.Equal(t, 2, h.Dims)
	assert.Equal(t, "java.lang.String[][]", h.String())

	nested := ArrayOf(h, 1)
	assert.Equal(t, 3, nested.Dims)
	assert.Equal(t, "java.lang.String[][][]", nested.String())
}

func TestLoader_TypeNotFound(t *testing.T) {
	l := newTestLoader(t)

	h, err := l.ClassNameToType("com.example.Missing")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.True(t, errors.IsTypeNotFound(err))

	var resErr *errors.ResolutionError
	require.True(t, stderrors.As(err, &resErr))
	assert.Equal(t, "com.example.Missing", resErr.TypeName)

	_, err = l.ClassNameToType("com.example.Missing[]")
	assert.True(t, errors.IsTypeNotFound(err))
}

func TestLoader_DefineAndCache(t *testing.T) {
	l := newTestLoader(t)
	l.Define(ClassDefinition{Name: "com.example.Widget", Kind: KindClass})

	first, err := l.ClassNameToType("com.example.Widget")
	require.NoError(t, err)
	second, err := l.ClassNameToType("com.example.Widget")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, l.Cached())
	assert.True(t, l.IsDefined("com.example.Widget"))
}

func TestLoader_InitializerRunsOnce(t *testing.T) {
	l := newTestLoader(t)
	l.Define(ClassDefinition{Name: "com.example.Config", Kind: KindClass})

	var calls atomic.Int32
	require.NoError(t, l.OnInitialize("com.example.Config", func() error {
		calls.Add(1)
		return nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.ClassNameToType("com.example.Config")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestLoader_InitializerFailure(t *testing.T) {
	l := newTestLoader(t)
	l.Define(ClassDefinition{Name: "com.example.Broken", Kind: KindClass})
	boom := stderrors.New("static block threw")
	require.NoError(t, l.OnInitialize("com.example.Broken", func() error { return boom }))

	for i := 0; i < 2; i++ {
		_, err := l.ClassNameToType("com.example.Broken")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.IsTypeNotFound(err))
	}
}

func TestLoader_RedefineKeepsInitializerOutcome(t *testing.T) {
	l := newTestLoader(t)
	l.Define(ClassDefinition{Name: "com.example.Config", Kind: KindClass})

	var calls atomic.Int32
	require.NoError(t, l.OnInitialize("com.example.Config", func() error {
		calls.Add(1)
		return nil
	}))
	_, err := l.ClassNameToType("com.example.Config")
	require.NoError(t, err)

	l.Define(ClassDefinition{Name: "com.example.Config", Kind: KindInterface})
	h, err := l.ClassNameToType("com.example.Config")
	require.NoError(t, err)
	assert.Equal(t, KindInterface, h.Kind)
	assert.Equal(t, int32(1), calls.Load())

	l.Define(ClassDefinition{Name: "com.example.Broken", Kind: KindClass})
	boom := stderrors.New("static block threw")
	require.NoError(t, l.OnInitialize("com.example.Broken", func() error { return boom }))
	_, err = l.ClassNameToType("com.example.Broken")
	require.ErrorIs(t, err, boom)

	l.Define(ClassDefinition{Name: "com.example.Broken", Kind: KindClass})
	_, err = l.ClassNameToType("com.example.Broken")
	assert.ErrorIs(t, err, boom)
}

func TestLoader_OnInitializeUnknownClass(t *testing.T) {
	l := newTestLoader(t)
	err := l.OnInitialize("com.example.Nope", func() error { return nil })
	assert.True(t, errors.IsTypeNotFound(err))
}

func TestLoader_ClassTypeParameters(t *testing.T) {
	l := newTestLoader(t)
	l.Define(ClassDefinition{Name: "com.example.Box", Kind: KindClass})

	_, ok := l.ClassTypeParameters("com.example.Box")
	assert.False(t, ok)

	sig, err := typesig.ParseClassSignature("<T:Ljava/lang/Number;>Ljava/lang/Object;", "com.example.Box")
	require.NoError(t, err)
	require.NoError(t, l.DeclareTypeParameters("com.example.Box", sig.TypeParameters))

	params, ok := l.ClassTypeParameters("com.example.Box")
	require.True(t, ok)
	assert.Equal(t, "T extends java.lang.Number", params[0].String())
}

func TestLoader_WithBootstrap(t *testing.T) {
	l := newTestLoader(t, WithBootstrap("javax.inject.Inject"))
	_, err := l.ClassNameToType("javax.inject.Inject")
	assert.NoError(t, err)
}

func TestNewLoader_InvalidCacheSize(t *testing.T) {
	_, err := NewLoader(WithCacheSize(0))
	require.Error(t, err)

	var ce errors.ClassinfoError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, errors.ConfigurationErrorCode, ce.ErrorCode())
}
