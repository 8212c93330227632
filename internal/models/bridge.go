package models

import (
	"fmt"

	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/typesig"
)

// ResultType resolves the result type through ctx. Constructors resolve to void.
func (m *MethodInfo) ResultType(ctx classloader.Context) (*classloader.TypeHandle, error) {
	if m.IsConstructor() {
		return classloader.Void, nil
	}
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return instantiate(ctx, sig.Result)
}

// ParameterTypes resolves every parameter type through ctx
func (m *MethodInfo) ParameterTypes(ctx classloader.Context) ([]*classloader.TypeHandle, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return instantiateAll(ctx, sig.Parameters)
}

// ThrowsTypes resolves every declared exception type through ctx
func (m *MethodInfo) ThrowsTypes(ctx classloader.Context) ([]*classloader.TypeHandle, error) {
	sig, err := m.TypeSignature()
	if err != nil {
		return nil, err
	}
	return instantiateAll(ctx, sig.Throws)
}

// AnnotationTypes resolves the distinct method annotation types, in name order
func (m *MethodInfo) AnnotationTypes(ctx classloader.Context) ([]*classloader.TypeHandle, error) {
	return resolveNames(ctx, m.AnnotationNames())
}

// ParameterAnnotationTypes resolves the annotation types of each parameter.
// The bool is false when the parameter annotation table is absent.
func (m *MethodInfo) ParameterAnnotationTypes(ctx classloader.Context) ([][]*classloader.TypeHandle, bool, error) {
	names, ok := m.ParameterAnnotationNames()
	if !ok {
		return nil, false, nil
	}
	types := make([][]*classloader.TypeHandle, len(names))
	for i, paramNames := range names {
		handles, err := resolveNames(ctx, paramNames)
		if err != nil {
			return nil, true, err
		}
		types[i] = handles
	}
	return types, true, nil
}

func resolveNames(ctx classloader.Context, names []string) ([]*classloader.TypeHandle, error) {
	handles := make([]*classloader.TypeHandle, len(names))
	for i, name := range names {
		h, err := resolveClass(ctx, name)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}
	return handles, nil
}

func instantiateAll[T typesig.TypeSignature](ctx classloader.Context, types []T) ([]*classloader.TypeHandle, error) {
	handles := make([]*classloader.TypeHandle, len(types))
	for i, t := range types {
		h, err := instantiate(ctx, t)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}
	return handles, nil
}

// instantiate resolves one type. Type variables resolve to their erasure.
func instantiate(ctx classloader.Context, t typesig.TypeSignature) (*classloader.TypeHandle, error) {
	switch t := t.(type) {
	case *typesig.BaseType:
		h, ok := classloader.Primitive(t.Name)
		if !ok {
			return nil, errors.NewTypeNotFoundError(t.Name)
		}
		return h, nil
	case *typesig.ClassRefType:
		return resolveClass(ctx, t.ClassName())
	case *typesig.ArrayType:
		elem, err := instantiate(ctx, t.Element)
		if err != nil {
			return nil, err
		}
		return classloader.ArrayOf(elem, t.Dims), nil
	case *typesig.TypeVariable:
		return instantiate(ctx, typesig.Erase(t, classScopeLookup(ctx)))
	default:
		return nil, errors.NewTypeNotFoundError(fmt.Sprintf("%v", t))
	}
}

func resolveClass(ctx classloader.Context, name string) (*classloader.TypeHandle, error) {
	if ctx == nil {
		err := errors.WrapResolutionError(name, errors.ErrTypeNotFound)
		err.WithSuggestion("Pass the scan's loader as the resolution context")
		return nil, err
	}
	h, err := ctx.ClassNameToType(name)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, errors.NewTypeNotFoundError(name)
	}
	return h, nil
}

// classScopeLookup finds declarations of class-level type variables when ctx knows them
func classScopeLookup(ctx classloader.Context) func(*typesig.TypeVariable) (*typesig.TypeParameter, bool) {
	scope, ok := ctx.(classloader.TypeVariableScope)
	if !ok {
		return nil
	}
	return func(v *typesig.TypeVariable) (*typesig.TypeParameter, bool) {
		params, ok := scope.ClassTypeParameters(v.DefiningClass)
		if !ok {
			return nil, false
		}
		for _, p := range params {
			if p.Name == v.Name {
				return p, true
			}
		}
		return nil, false
	}
}
