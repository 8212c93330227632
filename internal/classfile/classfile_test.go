package classfile

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/classinfo/internal/classfile/classfiletest"
	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/models"
)

func sampleClass() *classfiletest.Class {
	b := classfiletest.NewClass("com.example.Repository")
	b.Interfaces = []string{"java.io.Serializable"}
	b.Signature = "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/io/Serializable;"
	b.Fields = 2
	b.LongConst = true
	b.Methods = []classfiletest.Method{
		{
			Access:     0x0001,
			Name:       "<init>",
			Descriptor: "(Ljava/lang/String;)V",
			Params:     []classfiletest.Param{{Name: "name", Flags: 0x0010}},
			WithCode:   true,
		},
		{
			Access:     0x0001,
			Name:       "find",
			Descriptor: "(Ljava/lang/Object;)Ljava/util/List;",
			Signature:  "(TT;)Ljava/util/List<TT;>;",
			Visible: []classfiletest.Annotation{
				{Type: "java.lang.Deprecated", Elements: []classfiletest.Element{
					{Name: "since", Value: append([]byte{'s'}, 0, 1)},
					{Name: "forRemoval", Value: []byte{'Z', 0, 1}},
				}},
			},
			Invisible: []classfiletest.Annotation{{Type: "javax.annotation.CheckReturnValue"}},
			VisibleParams: [][]classfiletest.Annotation{
				{{Type: "javax.annotation.Nonnull"}},
			},
			WithCode: true,
		},
		{
			Access:     0x0089, // public static varargs
			Name:       "of",
			Descriptor: "([Ljava/lang/String;)Lcom/example/Repository;",
			Params:     []classfiletest.Param{{Name: "", Flags: 0x1000}},
		},
	}
	return b
}

func TestParse_Sample(t *testing.T) {
	cf, err := Parse(bytes.NewReader(sampleClass().Build()))
	require.NoError(t, err)

	assert.Equal(t, uint16(61), cf.MajorVersion)
	assert.Equal(t, "com.example.Repository", cf.ClassName)
	assert.Equal(t, "java.lang.Object", cf.SuperClass)
	assert.Equal(t, []string{"java.io.Serializable"}, cf.Interfaces)
	assert.Equal(t, "com.example", cf.PackageName())
	require.Len(t, cf.Methods, 3)

	ctor := cf.Methods[0]
	assert.Equal(t, "<init>", ctor.Name)
	assert.Equal(t, []string{"name"}, ctor.ParameterNames)
	assert.Equal(t, []models.Modifiers{models.AccParamFinal}, ctor.ParameterFlags)
	assert.Nil(t, ctor.ParameterAnnotations)
	assert.Empty(t, ctor.Annotations)

	find := cf.Methods[1]
	assert.Equal(t, "(TT;)Ljava/util/List<TT;>;", find.Signature)
	require.Len(t, find.Annotations, 2)
	assert.Equal(t, "java.lang.Deprecated", find.Annotations[0].Name)
	assert.True(t, find.Annotations[0].Visible)
	assert.Equal(t, "javax.annotation.CheckReturnValue", find.Annotations[1].Name)
	assert.False(t, find.Annotations[1].Visible)
	require.Len(t, find.ParameterAnnotations, 1)
	assert.Equal(t, "javax.annotation.Nonnull", find.ParameterAnnotations[0][0].Name)
	assert.Nil(t, find.ParameterNames)

	of := cf.Methods[2]
	assert.Equal(t, []string{""}, of.ParameterNames)
	assert.Equal(t, []models.Modifiers{models.AccParamSynthetic}, of.ParameterFlags)
}

func TestClassFile_MethodInfos(t *testing.T) {
	cf, err := ParseBytes(sampleClass().Build())
	require.NoError(t, err)

	infos := cf.MethodInfos()
	require.Len(t, infos, 3)

	assert.Equal(t, "public Repository(final java.lang.String name)", infos[0].String())
	assert.Equal(t,
		"@java.lang.Deprecated @javax.annotation.CheckReturnValue public java.util.List<T> find(@javax.annotation.Nonnull T)",
		infos[1].String())
	assert.Equal(t, "public static com.example.Repository of(synthetic java.lang.String... _unnamed_param_0)", infos[2].String())

	sig, ok := infos[1].TypeSignatureStr()
	assert.True(t, ok)
	assert.Equal(t, "(TT;)Ljava/util/List<TT;>;", sig)
}

func TestClassFile_Definition(t *testing.T) {
	cf, err := ParseBytes(sampleClass().Build())
	require.NoError(t, err)

	def := cf.Definition()
	assert.Equal(t, "com.example.Repository", def.Name)
	assert.Equal(t, classloader.KindClass, def.Kind)
	require.Len(t, def.TypeParameters, 1)
	assert.Equal(t, "T", def.TypeParameters[0].Name)
}

func TestClassFile_ClassKind(t *testing.T) {
	tests := []struct {
		name   string
		access uint16
		want   classloader.Kind
	}{
		{"class", 0x0021, classloader.KindClass},
		{"interface", 0x0601, classloader.KindInterface},
		{"annotation", 0x2601, classloader.KindAnnotation},
		{"enum", 0x4031, classloader.KindEnum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := classfiletest.NewClass("com.example.K")
			b.Access = tt.access
			cf, err := ParseBytes(b.Build())
			require.NoError(t, err)
			assert.Equal(t, tt.want, cf.ClassKind())

			sig, err := cf.ClassSignature()
			assert.NoError(t, err)
			assert.Nil(t, sig)
		})
	}
}

func TestParse_NestedAnnotationValues(t *testing.T) {
	b := classfiletest.NewClass("com.example.Nested")
	enumValue := []byte{'e', 0, 0, 0, 0}
	nested := []byte{'@', 0, 0, 0, 1, 0, 0, 'I', 0, 0}
	array := []byte{'[', 0, 2, 'c', 0, 0, 'J', 0, 0}
	b.Methods = []classfiletest.Method{{
		Access:     0x0001,
		Name:       "run",
		Descriptor: "()V",
		Visible: []classfiletest.Annotation{{Type: "com.example.Config", Elements: []classfiletest.Element{
			{Name: "mode", Value: enumValue},
			{Name: "inner", Value: nested},
			{Name: "types", Value: array},
		}}},
	}}

	cf, err := ParseBytes(b.Build())
	require.NoError(t, err)
	require.Len(t, cf.Methods[0].Annotations, 1)
	assert.Equal(t, "com.example.Config", cf.Methods[0].Annotations[0].Name)
}

func TestParse_BadMagic(t *testing.T) {
	data := sampleClass().Build()
	data[0] = 0xDE

	_, err := ParseBytes(data)
	require.Error(t, err)

	var cfErr *errors.ClassfileError
	require.True(t, stderrors.As(err, &cfErr))
	assert.Equal(t, "magic", cfErr.Structure)
	assert.Equal(t, errors.ClassfileErrorCode, cfErr.ErrorCode())
}

func TestParse_EveryTruncationFails(t *testing.T) {
	data := sampleClass().Build()
	for n := 0; n < len(data); n++ {
		_, err := ParseBytes(data[:n])
		require.Error(t, err, "prefix of %d bytes", n)

		var cfErr *errors.ClassfileError
		require.True(t, stderrors.As(err, &cfErr), "prefix of %d bytes: %v", n, err)
	}
}

func TestParse_UnknownConstantTag(t *testing.T) {
	data := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 61, 0, 2, 99}
	_, err := ParseBytes(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tag 99")
}

func TestDecodeModifiedUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("java/lang/String"), "java/lang/String"},
		{"encoded nul", []byte{'a', 0xC0, 0x80, 'b'}, "a\x00b"},
		{"two byte", []byte{0xC3, 0xA9}, "é"},
		{"three byte", []byte{0xE2, 0x82, 0xAC}, "€"},
		{"surrogate pair", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, "\U0001F600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeModifiedUTF8(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodeModifiedUTF8([]byte{0xC3})
	assert.Error(t, err)
	_, err = decodeModifiedUTF8([]byte{0xF0, 0x9F, 0x98, 0x80})
	assert.Error(t, err)
}

func TestMergeParameterAnnotations(t *testing.T) {
	a := models.NewAnnotationInfo("a.A", true)
	b := models.NewAnnotationInfo("b.B", false)

	assert.Nil(t, mergeParameterAnnotations(nil, nil))

	only := [][]*models.AnnotationInfo{{a}, {}}
	assert.Equal(t, only, mergeParameterAnnotations(only, nil))
	assert.Equal(t, only, mergeParameterAnnotations(nil, only))

	merged := mergeParameterAnnotations([][]*models.AnnotationInfo{{a}, {}}, [][]*models.AnnotationInfo{{b}, {b}})
	require.Len(t, merged, 2)
	assert.Equal(t, []*models.AnnotationInfo{a, b}, merged[0])
	assert.Equal(t, []*models.AnnotationInfo{b}, merged[1])

	assert.Nil(t, mergeParameterAnnotations([][]*models.AnnotationInfo{{a}}, [][]*models.AnnotationInfo{{b}, {b}}))
}

func TestParse_ParameterAnnotationTablesOfDifferentLengths(t *testing.T) {
	b := classfiletest.NewClass("com.example.Outer$Inner")
	b.Methods = []classfiletest.Method{{
		Access:     0x0001,
		Name:       "<init>",
		Descriptor: "(Lcom/example/Outer;Ljava/lang/String;I)V",
		VisibleParams: [][]classfiletest.Annotation{
			{{Type: "a.OnName"}},
			{{Type: "a.OnCount"}},
		},
		InvisibleParams: [][]classfiletest.Annotation{{}, {}, {}},
	}}

	cf, err := ParseBytes(b.Build())
	require.NoError(t, err)
	assert.Nil(t, cf.Methods[0].ParameterAnnotations)

	info := cf.MethodInfos()[0]
	names, ok := info.ParameterAnnotationNames()
	assert.False(t, ok)
	assert.Nil(t, names)
}
