package models

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/typesig"
)

func newLoader(t *testing.T, classes ...string) *classloader.Loader {
	t.Helper()
	l, err := classloader.NewLoader()
	require.NoError(t, err)
	for _, name := range classes {
		l.Define(classloader.ClassDefinition{Name: name, Kind: classloader.KindClass})
	}
	return l
}

// mapContext is a Context without class type parameter knowledge
type mapContext map[string]*classloader.TypeHandle

func (c mapContext) ClassNameToType(name string) (*classloader.TypeHandle, error) {
	if h, ok := c[name]; ok {
		return h, nil
	}
	return nil, errors.NewTypeNotFoundError(name)
}

func handleNames(handles []*classloader.TypeHandle) []string {
	return typesig.Strings(handles)
}

func TestMethodInfo_ParameterTypes(t *testing.T) {
	l := newLoader(t, "com.example.Order", "com.example.Order$Line")
	m := NewMethodInfo("com.example.Shop", "place", nil, AccPublic,
		"(Lcom/example/Order;[Lcom/example/Order$Line;I)Ljava/util/List;",
		"(Lcom/example/Order;[Lcom/example/Order$Line;I)Ljava/util/List<Lcom/example/Order;>;",
		ParameterTables{})

	params, err := m.ParameterTypes(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Order", "com.example.Order$Line[]", "int"}, handleNames(params))
	assert.Same(t, classloader.Int, params[2])

	result, err := m.ResultType(l)
	require.NoError(t, err)
	assert.Equal(t, "java.util.List", result.Name)
	assert.Equal(t, classloader.KindInterface, result.Kind)
}

func TestMethodInfo_ResultTypeConstructor(t *testing.T) {
	m := method("com.example.Missing", "<init>", "(Lcom/example/Nowhere;)V")

	// no lookup happens for the result of a constructor
	h, err := m.ResultType(mapContext{})
	require.NoError(t, err)
	assert.Same(t, classloader.Void, h)
}

func TestMethodInfo_TypeNotFound(t *testing.T) {
	l := newLoader(t)
	m := method("com.example.Shop", "place", "(Lcom/example/Unknown;)V")

	handles, err := m.ParameterTypes(l)
	require.Error(t, err)
	assert.Nil(t, handles)
	assert.True(t, errors.IsTypeNotFound(err))

	var resErr *errors.ResolutionError
	require.True(t, stderrors.As(err, &resErr))
	assert.Equal(t, "com.example.Unknown", resErr.TypeName)
}

func TestMethodInfo_NilContext(t *testing.T) {
	m := method("com.example.Shop", "name", "()Ljava/lang/String;")
	_, err := m.ResultType(nil)
	assert.True(t, errors.IsTypeNotFound(err))
}

func TestMethodInfo_ThrowsTypesErasesTypeVariables(t *testing.T) {
	l := newLoader(t)
	m := NewMethodInfo("com.example.Task", "call", nil, AccPublic,
		"()Ljava/lang/Object;",
		"<E:Ljava/lang/Exception;>()Ljava/lang/Object;^TE;^Ljava/io/IOException;",
		ParameterTables{})

	throws, err := m.ThrowsTypes(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang.Exception", "java.io.IOException"}, handleNames(throws))
}

func TestMethodInfo_ClassScopeTypeVariables(t *testing.T) {
	l := newLoader(t, "com.example.Box")
	classSig, err := typesig.ParseClassSignature("<T:Ljava/lang/Number;>Ljava/lang/Object;", "com.example.Box")
	require.NoError(t, err)
	require.NoError(t, l.DeclareTypeParameters("com.example.Box", classSig.TypeParameters))

	m := NewMethodInfo("com.example.Box", "values", nil, AccPublic,
		"()[Ljava/lang/Number;", "()[TT;", ParameterTables{})

	result, err := m.ResultType(l)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Number[]", result.String())

	// without class scope knowledge the variable erases to Object
	ctx := mapContext{"java.lang.Object": {Name: "java.lang.Object", Kind: classloader.KindClass}}
	result, err = m.ResultType(ctx)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Object[]", result.String())
}

func TestMethodInfo_AnnotationTypes(t *testing.T) {
	l := newLoader(t)
	l.Define(classloader.ClassDefinition{Name: "org.junit.Test", Kind: classloader.KindAnnotation})

	m := NewMethodInfo("com.example.ATest", "works", []*AnnotationInfo{
		NewAnnotationInfo("org.junit.Test", true),
		NewAnnotationInfo("java.lang.Deprecated", true),
	}, AccPublic, "(Ljava/lang/String;)V", "", ParameterTables{
		Annotations: [][]*AnnotationInfo{{NewAnnotationInfo("java.lang.Deprecated", true)}},
	})

	types, err := m.AnnotationTypes(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang.Deprecated", "org.junit.Test"}, handleNames(types))
	assert.Equal(t, classloader.KindAnnotation, types[1].Kind)

	paramTypes, ok, err := m.ParameterAnnotationTypes(l)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "java.lang.Deprecated", paramTypes[0][0].Name)
}

func TestMethodInfo_ParameterAnnotationTypesAbsent(t *testing.T) {
	m := NewMethodInfo("com.example.A", "run", nil, AccPublic, "(II)V", "", ParameterTables{
		Annotations: [][]*AnnotationInfo{{}},
	})
	types, ok, err := m.ParameterAnnotationTypes(newLoader(t))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, types)
}

func TestMethodInfo_InitializerRunsOnResolution(t *testing.T) {
	l := newLoader(t, "com.example.Plugin")
	ran := 0
	require.NoError(t, l.OnInitialize("com.example.Plugin", func() error {
		ran++
		return nil
	}))

	m := method("com.example.Host", "load", "(Lcom/example/Plugin;)V")
	assert.Equal(t, 0, ran)

	// structural accessors never load
	_, err := m.ParameterTypeStrs()
	require.NoError(t, err)
	assert.Equal(t, 0, ran)

	for i := 0; i < 3; i++ {
		_, err := m.ParameterTypes(l)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ran)
}
