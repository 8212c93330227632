package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodInfo_String(t *testing.T) {
	deprecated := NewAnnotationInfo("java.lang.Deprecated", true)
	nonNull := NewAnnotationInfo("javax.annotation.Nonnull", true)

	tests := []struct {
		name   string
		method *MethodInfo
		want   string
	}{
		{
			name:   "plain descriptor without names",
			method: NewMethodInfo("com.example.Math", "max", nil, AccPublic|AccStatic, "(II)I", "", ParameterTables{}),
			want:   "public static int max(int, int)",
		},
		{
			name: "generic with throws and names",
			method: NewMethodInfo("com.example.Codec", "decode", []*AnnotationInfo{deprecated}, AccPublic,
				"(Ljava/lang/Class;)Ljava/lang/Object;",
				"<T:Ljava/lang/Object;>(Ljava/lang/Class<TT;>;)TT;^Ljava/io/IOException;",
				ParameterTables{
					Names:     []string{"type"},
					Modifiers: []Modifiers{AccParamFinal},
				}),
			want: "@java.lang.Deprecated public <T> T decode(final java.lang.Class<T> type) throws java.io.IOException",
		},
		{
			name: "constructor uses simple class name",
			method: NewMethodInfo("com.example.Outer$Inner", "<init>", nil, AccPublic, "(Lcom/example/Outer;I)V", "",
				ParameterTables{
					Names:     []string{"", "size"},
					Modifiers: []Modifiers{AccParamFinal | AccParamMandated, 0},
				}),
			want: "public Inner(final mandated com.example.Outer _unnamed_param_0, int size)",
		},
		{
			name:   "static initializer",
			method: NewMethodInfo("com.example.Registry", "<clinit>", nil, AccStatic, "()V", "", ParameterTables{}),
			want:   "static",
		},
		{
			name: "varargs with parameter annotations",
			method: NewMethodInfo("com.example.Log", "info", nil, AccPublic|AccVarargs,
				"(Ljava/lang/String;[Ljava/lang/Object;)V", "",
				ParameterTables{Annotations: [][]*AnnotationInfo{{nonNull}, nil}}),
			want: "public void info(@javax.annotation.Nonnull java.lang.String, java.lang.Object...)",
		},
		{
			name: "varargs over multi-dimensional array",
			method: NewMethodInfo("com.example.Grid", "fill", nil, AccVarargs,
				"([[I)V", "", ParameterTables{}),
			want: "void fill(int[]...)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.String())
		})
	}
}
