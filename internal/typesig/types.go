// Package typesig models JVM method descriptors and generic signatures as one
// structured form, and parses both encodings into it.
//
// ref - https://docs.oracle.com/javase/specs/jvms/se17/html/jvms-4.html#jvms-4.7.9.1
package typesig

import (
	"strings"
)

// TypeSignature is any type that can appear in a method signature
type TypeSignature interface {
	// String renders the type the way Java source would spell it
	String() string
	typeSignature()
}

// ReferenceTypeSignature is a class type, a type variable or an array type
type ReferenceTypeSignature interface {
	TypeSignature
	referenceType()
}

// BaseType is a primitive type or void
type BaseType struct {
	Descriptor byte   // descriptor character, e.g. 'I'
	Name       string // Java keyword, e.g. "int"
}

var (
	Byte    = &BaseType{Descriptor: 'B', Name: "byte"}
	Char    = &BaseType{Descriptor: 'C', Name: "char"}
	Double  = &BaseType{Descriptor: 'D', Name: "double"}
	Float   = &BaseType{Descriptor: 'F', Name: "float"}
	Int     = &BaseType{Descriptor: 'I', Name: "int"}
	Long    = &BaseType{Descriptor: 'J', Name: "long"}
	Short   = &BaseType{Descriptor: 'S', Name: "short"}
	Boolean = &BaseType{Descriptor: 'Z', Name: "boolean"}
	Void    = &BaseType{Descriptor: 'V', Name: "void"}
)

var baseTypes = map[byte]*BaseType{
	'B': Byte,
	'C': Char,
	'D': Double,
	'F': Float,
	'I': Int,
	'J': Long,
	'S': Short,
	'Z': Boolean,
	'V': Void,
}

func (b *BaseType) String() string { return b.Name }
func (b *BaseType) typeSignature() {}

// IsVoid reports whether t is the void result type
func IsVoid(t TypeSignature) bool {
	return t == Void
}

// ClassRefType is a reference to a (possibly generic, possibly inner) class
type ClassRefType struct {
	BaseClassName       string            // outermost class, dotted: "java.util.Map"
	TypeArguments       []*TypeArgument   // type arguments of the outermost class
	Suffixes            []string          // inner class names from ".Inner" suffixes
	SuffixTypeArguments [][]*TypeArgument // type arguments per suffix, same length as Suffixes
}

// ClassName returns the binary class name used to load the class,
// joining inner class suffixes with '$'
func (c *ClassRefType) ClassName() string {
	if len(c.Suffixes) == 0 {
		return c.BaseClassName
	}
	return c.BaseClassName + "$" + strings.Join(c.Suffixes, "$")
}

func (c *ClassRefType) String() string {
	var buf strings.Builder
	buf.WriteString(c.BaseClassName)
	writeTypeArguments(&buf, c.TypeArguments)
	for i, suffix := range c.Suffixes {
		buf.WriteByte('.')
		buf.WriteString(suffix)
		writeTypeArguments(&buf, c.SuffixTypeArguments[i])
	}
	return buf.String()
}

func (c *ClassRefType) typeSignature() {}
func (c *ClassRefType) referenceType() {}

// TypeVariableScope tells where a type variable was declared
type TypeVariableScope int

const (
	// ClassScope variables are declared by the defining class (or an enclosing class)
	ClassScope TypeVariableScope = iota
	// MethodScope variables are declared by the method itself
	MethodScope
)

// TypeVariable is a reference to a type parameter, e.g. T
type TypeVariable struct {
	Name          string
	Scope         TypeVariableScope
	DefiningClass string         // class whose signature was being parsed
	Declaration   *TypeParameter // set for MethodScope variables
}

func (v *TypeVariable) String() string { return v.Name }
func (v *TypeVariable) typeSignature() {}
func (v *TypeVariable) referenceType() {}

// ArrayType is an array of Dims dimensions over a non-array element type
type ArrayType struct {
	Element TypeSignature
	Dims    int
}

func (a *ArrayType) String() string {
	return a.Element.String() + strings.Repeat("[]", a.Dims)
}

func (a *ArrayType) typeSignature() {}
func (a *ArrayType) referenceType() {}

// Wildcard is the wildcard indicator of a type argument
type Wildcard int

const (
	WildcardNone    Wildcard = iota // exact type: List<String>
	WildcardAny                     // unbounded: List<?>
	WildcardExtends                 // upper bound: List<? extends Number>
	WildcardSuper                   // lower bound: List<? super Integer>
)

// TypeArgument is one argument of a parameterized class type
type TypeArgument struct {
	Wildcard Wildcard
	Type     ReferenceTypeSignature // nil for WildcardAny
}

func (a *TypeArgument) String() string {
	switch a.Wildcard {
	case WildcardAny:
		return "?"
	case WildcardExtends:
		return "? extends " + a.Type.String()
	case WildcardSuper:
		return "? super " + a.Type.String()
	default:
		return a.Type.String()
	}
}

// TypeParameter is a declared type parameter with its bounds
type TypeParameter struct {
	Name            string
	ClassBound      ReferenceTypeSignature // may be nil when only interface bounds exist
	InterfaceBounds []ReferenceTypeSignature
}

// Bounds returns the class bound (if any) followed by the interface bounds
func (p *TypeParameter) Bounds() []ReferenceTypeSignature {
	bounds := make([]ReferenceTypeSignature, 0, len(p.InterfaceBounds)+1)
	if p.ClassBound != nil {
		bounds = append(bounds, p.ClassBound)
	}
	return append(bounds, p.InterfaceBounds...)
}

// ErasureBound returns the leftmost bound, which defines the erasure of the
// type variable, or nil when the parameter is unbounded
func (p *TypeParameter) ErasureBound() ReferenceTypeSignature {
	if p.ClassBound != nil {
		return p.ClassBound
	}
	if len(p.InterfaceBounds) > 0 {
		return p.InterfaceBounds[0]
	}
	return nil
}

func (p *TypeParameter) String() string {
	bounds := p.Bounds()
	if len(bounds) == 0 || (len(bounds) == 1 && isObject(bounds[0])) {
		return p.Name
	}
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = b.String()
	}
	return p.Name + " extends " + strings.Join(parts, " & ")
}

// Source records which encoding a MethodSignature was built from
type Source int

const (
	FromDescriptor Source = iota
	FromSignature
)

func (s Source) String() string {
	if s == FromSignature {
		return "signature"
	}
	return "descriptor"
}

// MethodSignature is the structured form of a method descriptor or signature
type MethodSignature struct {
	TypeParameters []*TypeParameter
	Parameters     []TypeSignature
	Result         TypeSignature
	Throws         []ReferenceTypeSignature // class types or type variables
	Source         Source
	DefiningClass  string
}

// NumParameters returns the number of parameter types
func (m *MethodSignature) NumParameters() int {
	return len(m.Parameters)
}

// TypeParameter returns the method-level type parameter called name
func (m *MethodSignature) TypeParameter(name string) (*TypeParameter, bool) {
	for _, p := range m.TypeParameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

func (m *MethodSignature) String() string {
	var buf strings.Builder
	if len(m.TypeParameters) > 0 {
		buf.WriteString(JoinStrings(m.TypeParameters, "<", ", ", "> "))
	}
	buf.WriteString(m.Result.String())
	buf.WriteString(JoinStrings(m.Parameters, " (", ", ", ")"))
	if len(m.Throws) > 0 {
		buf.WriteString(JoinStrings(m.Throws, " throws ", ", ", ""))
	}
	return buf.String()
}

// ClassSignature is the structured form of a class Signature attribute
type ClassSignature struct {
	TypeParameters []*TypeParameter
	Superclass     *ClassRefType
	Interfaces     []*ClassRefType
}

// JoinStrings renders each item with String and joins them between prefix and suffix
func JoinStrings[T interface{ String() string }](items []T, prefix, sep, suffix string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return prefix + strings.Join(parts, sep) + suffix
}

// Strings renders each item with String
func Strings[T interface{ String() string }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}

func writeTypeArguments(buf *strings.Builder, args []*TypeArgument) {
	if len(args) == 0 {
		return
	}
	buf.WriteString(JoinStrings(args, "<", ", ", ">"))
}

func isObject(t ReferenceTypeSignature) bool {
	c, ok := t.(*ClassRefType)
	return ok && c.BaseClassName == "java.lang.Object" && len(c.Suffixes) == 0 && len(c.TypeArguments) == 0
}
