// Package classloader turns type names into type handles for a scanned classpath.
//
// A Loader only knows the classes it was told about (through Define) plus a
// fixed set of bootstrap JDK names. Looking up anything else fails with an
// error that matches errors.ErrTypeNotFound.
package classloader

import (
	"strings"

	"github.com/toyz/classinfo/internal/typesig"
)

// Kind classifies a TypeHandle
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindAnnotation
	KindEnum
	KindPrimitive
	KindVoid
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindAnnotation:
		return "annotation"
	case KindEnum:
		return "enum"
	case KindPrimitive:
		return "primitive"
	case KindVoid:
		return "void"
	case KindArray:
		return "array"
	default:
		return "class"
	}
}

// TypeHandle is a loaded type
type TypeHandle struct {
	Name      string      // binary class name or primitive keyword; element name for arrays
	Kind      Kind        // what sort of type this is
	Component *TypeHandle // element handle for arrays
	Dims      int         // array dimensions, 0 for non-arrays
}

// String renders the handle the way Java source spells the type
func (h *TypeHandle) String() string {
	if h.Kind == KindArray {
		return h.Component.String() + strings.Repeat("[]", h.Dims)
	}
	return h.Name
}

// IsPrimitive reports whether h is a primitive type (not void)
func (h *TypeHandle) IsPrimitive() bool {
	return h.Kind == KindPrimitive
}

// ArrayOf returns the array type with dims dimensions over elem
func ArrayOf(elem *TypeHandle, dims int) *TypeHandle {
	if elem.Kind == KindArray {
		return &TypeHandle{Name: elem.Component.Name, Kind: KindArray, Component: elem.Component, Dims: elem.Dims + dims}
	}
	return &TypeHandle{Name: elem.Name, Kind: KindArray, Component: elem, Dims: dims}
}

var (
	Boolean = &TypeHandle{Name: "boolean", Kind: KindPrimitive}
	Byte    = &TypeHandle{Name: "byte", Kind: KindPrimitive}
	Char    = &TypeHandle{Name: "char", Kind: KindPrimitive}
	Short   = &TypeHandle{Name: "short", Kind: KindPrimitive}
	Int     = &TypeHandle{Name: "int", Kind: KindPrimitive}
	Long    = &TypeHandle{Name: "long", Kind: KindPrimitive}
	Float   = &TypeHandle{Name: "float", Kind: KindPrimitive}
	Double  = &TypeHandle{Name: "double", Kind: KindPrimitive}
	Void    = &TypeHandle{Name: "void", Kind: KindVoid}
)

var primitives = map[string]*TypeHandle{
	"boolean": Boolean,
	"byte":    Byte,
	"char":    Char,
	"short":   Short,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"void":    Void,
}

// Primitive returns the fixed handle for a primitive or void type name
func Primitive(name string) (*TypeHandle, bool) {
	h, ok := primitives[name]
	return h, ok
}

// Context resolves class names to type handles. Implementations may load and
// initialize classes as a side effect.
type Context interface {
	ClassNameToType(name string) (*TypeHandle, error)
}

// TypeVariableScope is implemented by contexts that know the type parameters
// declared by a class, so class-level type variables can be erased correctly
type TypeVariableScope interface {
	ClassTypeParameters(className string) ([]*typesig.TypeParameter, bool)
}
