package typesig

// bindTypeVariables marks every type variable declared by the method itself as
// MethodScope and links it to its declaration. Everything else stays ClassScope.
func bindTypeVariables(sig *MethodSignature) {
	if len(sig.TypeParameters) == 0 {
		return
	}
	bind := func(v *TypeVariable) {
		if decl, ok := sig.TypeParameter(v.Name); ok {
			v.Scope = MethodScope
			v.Declaration = decl
		}
	}
	for _, p := range sig.TypeParameters {
		for _, b := range p.Bounds() {
			Walk(b, bind)
		}
	}
	for _, t := range sig.Parameters {
		Walk(t, bind)
	}
	Walk(sig.Result, bind)
	for _, t := range sig.Throws {
		Walk(t, bind)
	}
}

// Walk calls fn for every type variable reachable from t
func Walk(t TypeSignature, fn func(*TypeVariable)) {
	switch t := t.(type) {
	case *TypeVariable:
		fn(t)
	case *ArrayType:
		Walk(t.Element, fn)
	case *ClassRefType:
		walkArguments(t.TypeArguments, fn)
		for _, args := range t.SuffixTypeArguments {
			walkArguments(args, fn)
		}
	}
}

func walkArguments(args []*TypeArgument, fn func(*TypeVariable)) {
	for _, a := range args {
		if a.Type != nil {
			Walk(a.Type, fn)
		}
	}
}

// Erase returns the erased form of t. Type variables are replaced by the
// erasure of their leftmost bound; lookup supplies declarations for ClassScope
// variables and may be nil. Unresolvable variables erase to java.lang.Object.
func Erase(t TypeSignature, lookup func(*TypeVariable) (*TypeParameter, bool)) TypeSignature {
	return erase(t, lookup, map[*TypeParameter]bool{})
}

func erase(t TypeSignature, lookup func(*TypeVariable) (*TypeParameter, bool), seen map[*TypeParameter]bool) TypeSignature {
	switch t := t.(type) {
	case *BaseType:
		return t
	case *ClassRefType:
		return &ClassRefType{
			BaseClassName:       t.BaseClassName,
			TypeArguments:       []*TypeArgument{},
			Suffixes:            t.Suffixes,
			SuffixTypeArguments: make([][]*TypeArgument, len(t.Suffixes)),
		}
	case *ArrayType:
		elem := erase(t.Element, lookup, seen)
		if inner, ok := elem.(*ArrayType); ok {
			return &ArrayType{Element: inner.Element, Dims: inner.Dims + t.Dims}
		}
		return &ArrayType{Element: elem, Dims: t.Dims}
	case *TypeVariable:
		decl := t.Declaration
		if decl == nil && lookup != nil {
			decl, _ = lookup(t)
		}
		// seen guards against recursive bounds such as <T extends Comparable<T>> chains through variables
		if decl == nil || seen[decl] {
			return ObjectType()
		}
		bound := decl.ErasureBound()
		if bound == nil {
			return ObjectType()
		}
		seen[decl] = true
		defer delete(seen, decl)
		return erase(bound, lookup, seen)
	default:
		return ObjectType()
	}
}

// ObjectType returns a fresh reference to java.lang.Object
func ObjectType() *ClassRefType {
	return &ClassRefType{
		BaseClassName:       "java.lang.Object",
		TypeArguments:       []*TypeArgument{},
		Suffixes:            []string{},
		SuffixTypeArguments: [][]*TypeArgument{},
	}
}
