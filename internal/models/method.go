// Package models holds the metadata records produced by a class scan.
package models

import (
	stderrors "errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/typesig"
)

const (
	constructorName       = "<init>"
	staticInitializerName = "<clinit>"
)

// ParameterTables are the optional per-parameter tables recorded by the class
// file. A nil table is absent. Tables are trusted only when their length
// matches the parameter count of the resolved signature.
type ParameterTables struct {
	Names       []string            // "" marks a parameter without a recorded name
	Modifiers   []Modifiers         // MethodParameters access flags
	Annotations [][]*AnnotationInfo // parameter annotations, visible and invisible merged
}

// MethodInfo is the metadata of one method of a scanned class.
//
// Everything except the parsed signature is fixed at construction. The
// signature is parsed on first use and then shared by every caller.
type MethodInfo struct {
	className   string
	methodName  string
	annotations []*AnnotationInfo
	modifiers   Modifiers
	descriptor  string
	signature   string // "" when the class file has no Signature attribute
	tables      ParameterTables

	mu  sync.Mutex
	sig atomic.Pointer[typesig.MethodSignature]
}

// NewMethodInfo creates a method record. signature is "" when absent.
func NewMethodInfo(className, methodName string, annotations []*AnnotationInfo, modifiers Modifiers,
	descriptor, signature string, tables ParameterTables) *MethodInfo {
	if annotations == nil {
		annotations = []*AnnotationInfo{}
	}
	return &MethodInfo{
		className:   className,
		methodName:  methodName,
		annotations: annotations,
		modifiers:   modifiers,
		descriptor:  descriptor,
		signature:   signature,
		tables:      tables,
	}
}

// ClassName returns the binary name of the declaring class
func (m *MethodInfo) ClassName() string { return m.className }

// MethodName returns the method name, "<init>" for constructors
func (m *MethodInfo) MethodName() string { return m.methodName }

// TypeDescriptorStr returns the erased method descriptor
func (m *MethodInfo) TypeDescriptorStr() string { return m.descriptor }

// TypeSignatureStr returns the generic signature, if the class file has one
func (m *MethodInfo) TypeSignatureStr() (string, bool) {
	return m.signature, m.signature != ""
}

// Modifiers returns the method access flags
func (m *MethodInfo) Modifiers() Modifiers { return m.modifiers }

// ModifiersStr renders the access flags, e.g. "public static"
func (m *MethodInfo) ModifiersStr() string { return m.modifiers.MethodString() }

// Annotations returns the method annotations in class file order
func (m *MethodInfo) Annotations() []*AnnotationInfo { return m.annotations }

// AnnotationNames returns the distinct method annotation names, sorted
func (m *MethodInfo) AnnotationNames() []string {
	return UniqueAnnotationNamesSorted(m.annotations)
}

// IsConstructor reports whether the method is an instance initializer (<init>)
func (m *MethodInfo) IsConstructor() bool { return m.methodName == constructorName }

// IsStaticInitializer reports whether the method is the class initializer (<clinit>)
func (m *MethodInfo) IsStaticInitializer() bool { return m.methodName == staticInitializerName }

// IsPublic reports public visibility
func (m *MethodInfo) IsPublic() bool { return m.modifiers.Visibility() == Public }

// IsPrivate reports private visibility
func (m *MethodInfo) IsPrivate() bool { return m.modifiers.Visibility() == Private }

// IsProtected reports protected visibility
func (m *MethodInfo) IsProtected() bool { return m.modifiers.Visibility() == Protected }

// IsPackagePrivate reports that no visibility flag is set
func (m *MethodInfo) IsPackagePrivate() bool { return m.modifiers.IsPackagePrivate() }

// IsStatic reports ACC_STATIC
func (m *MethodInfo) IsStatic() bool { return m.modifiers.Has(AccStatic) }

// IsFinal reports ACC_FINAL
func (m *MethodInfo) IsFinal() bool { return m.modifiers.Has(AccFinal) }

// IsSynchronized reports ACC_SYNCHRONIZED
func (m *MethodInfo) IsSynchronized() bool { return m.modifiers.Has(AccSynchronized) }

// IsBridge reports a compiler-generated bridge method
func (m *MethodInfo) IsBridge() bool { return m.modifiers.Has(AccBridge) }

// IsVarArgs reports a variable arity method
func (m *MethodInfo) IsVarArgs() bool { return m.modifiers.Has(AccVarargs) }

// IsNative reports ACC_NATIVE
func (m *MethodInfo) IsNative() bool { return m.modifiers.Has(AccNative) }

// IsAbstract reports ACC_ABSTRACT
func (m *MethodInfo) IsAbstract() bool { return m.modifiers.Has(AccAbstract) }

// IsSynthetic reports a method not present in source
func (m *MethodInfo) IsSynthetic() bool { return m.modifiers.Has(AccSynthetic) }

// TypeSignature returns the parsed signature, built from the generic signature
// when present and from the descriptor otherwise. The first successful parse is
// kept; a failed parse is returned to the caller and tried again next time.
func (m *MethodInfo) TypeSignature() (*typesig.MethodSignature, error) {
	if sig := m.sig.Load(); sig != nil {
		return sig, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sig := m.sig.Load(); sig != nil {
		return sig, nil
	}

	var (
		sig *typesig.MethodSignature
		err error
	)
	if m.signature != "" {
		sig, err = typesig.ParseMethodSignature(m.signature, m.className)
	} else {
		sig, err = typesig.ParseMethodDescriptor(m.descriptor)
		if sig != nil {
			sig.DefiningClass = m.className
		}
	}
	if err != nil {
		var sigErr *errors.SignatureError
		if stderrors.As(err, &sigErr) {
			sigErr.WithContext("class", m.className).WithContext("method", m.methodName)
		}
		return nil, err
	}

	m.sig.Store(sig)
	return sig, nil
}

// NumParameters returns the parameter count of the resolved signature
func (m *MethodInfo) NumParameters() (int, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return 0, err
	}
	return sig.NumParameters(), nil
}

// ParameterTypeSignatures returns the parameter types
func (m *MethodInfo) ParameterTypeSignatures() ([]typesig.TypeSignature, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return slices.Clone(sig.Parameters), nil
}

// ResultTypeSignature returns the result type; always void for constructors
func (m *MethodInfo) ResultTypeSignature() (typesig.TypeSignature, error) {
	if m.IsConstructor() {
		return typesig.Void, nil
	}
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return sig.Result, nil
}

// ThrowsTypeSignatures returns the declared exceptions, class types or type variables
func (m *MethodInfo) ThrowsTypeSignatures() ([]typesig.ReferenceTypeSignature, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return slices.Clone(sig.Throws), nil
}

// TypeParameters returns the type parameters declared by the method
func (m *MethodInfo) TypeParameters() ([]*typesig.TypeParameter, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return slices.Clone(sig.TypeParameters), nil
}

// ParameterTypeStrs renders each parameter type in Java syntax
func (m *MethodInfo) ParameterTypeStrs() ([]string, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return typesig.Strings(sig.Parameters), nil
}

// ResultTypeStr renders the result type in Java syntax
func (m *MethodInfo) ResultTypeStr() (string, error) {
	t, err := m.ResultTypeSignature()
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// ThrowsTypeStrs renders the declared exceptions
func (m *MethodInfo) ThrowsTypeStrs() ([]string, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return typesig.Strings(sig.Throws), nil
}

// TypeParameterStrs renders the method type parameters with their bounds
func (m *MethodInfo) TypeParameterStrs() ([]string, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return typesig.Strings(sig.TypeParameters), nil
}

// aligned reports whether a table of length n can be matched to parameter
// positions. Some compilers (kotlinc among them) record tables that disagree
// with the signature; those are dropped whole.
func (m *MethodInfo) aligned(present bool, n int) bool {
	if !present {
		return false
	}
	count, err := m.NumParameters()
	return err == nil && count == n
}

// ParameterNames returns the recorded parameter names. false means the names
// are absent, either never recorded or not aligned with the parameters.
func (m *MethodInfo) ParameterNames() ([]string, bool) {
	if !m.aligned(m.tables.Names != nil, len(m.tables.Names)) {
		return nil, false
	}
	return slices.Clone(m.tables.Names), true
}

// ParameterModifiers returns the recorded parameter access flags
func (m *MethodInfo) ParameterModifiers() ([]Modifiers, bool) {
	if !m.aligned(m.tables.Modifiers != nil, len(m.tables.Modifiers)) {
		return nil, false
	}
	return slices.Clone(m.tables.Modifiers), true
}

// ParameterModifierStrs renders each parameter's access flags
func (m *MethodInfo) ParameterModifierStrs() ([]string, bool) {
	mods, ok := m.ParameterModifiers()
	if !ok {
		return nil, false
	}
	strs := make([]string, len(mods))
	for i, mod := range mods {
		strs[i] = mod.ParameterString()
	}
	return strs, true
}

// ParameterAnnotationInfo returns the annotations of each parameter
func (m *MethodInfo) ParameterAnnotationInfo() ([][]*AnnotationInfo, bool) {
	if !m.aligned(m.tables.Annotations != nil, len(m.tables.Annotations)) {
		return nil, false
	}
	return slices.Clone(m.tables.Annotations), true
}

// ParameterAnnotationNames returns the distinct annotation names of each parameter, sorted
func (m *MethodInfo) ParameterAnnotationNames() ([][]string, bool) {
	infos, ok := m.ParameterAnnotationInfo()
	if !ok {
		return nil, false
	}
	names := make([][]string, len(infos))
	for i, annotations := range infos {
		names[i] = UniqueAnnotationNamesSorted(annotations)
	}
	return names, true
}

// ParameterInfo combines everything known about one parameter. Each optional
// field comes from its own table and is present only if that table is aligned.
type ParameterInfo struct {
	Index          int
	Type           typesig.TypeSignature
	Name           string
	HasName        bool
	Modifiers      Modifiers
	HasModifiers   bool
	Annotations    []*AnnotationInfo
	HasAnnotations bool
}

// Parameters returns one record per parameter of the resolved signature
func (m *MethodInfo) Parameters() ([]ParameterInfo, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}

	names, hasNames := m.ParameterNames()
	mods, hasMods := m.ParameterModifiers()
	annotations, hasAnnotations := m.ParameterAnnotationInfo()

	params := make([]ParameterInfo, sig.NumParameters())
	for i, t := range sig.Parameters {
		p := ParameterInfo{Index: i, Type: t, Annotations: []*AnnotationInfo{}}
		if hasNames && names[i] != "" {
			p.Name, p.HasName = names[i], true
		}
		if hasMods {
			p.Modifiers, p.HasModifiers = mods[i], true
		}
		if hasAnnotations {
			p.HasAnnotations = true
			if annotations[i] != nil {
				p.Annotations = annotations[i]
			}
		}
		params[i] = p
	}
	return params, nil
}
