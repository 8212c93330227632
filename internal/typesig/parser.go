package typesig

import (
	"fmt"
	"strings"

	"github.com/toyz/classinfo/internal/errors"
)

// parser is a single-pass recursive descent reader over a descriptor or signature
type parser struct {
	input         string
	pos           int
	generics      bool // false while reading an erased descriptor
	definingClass string
}

// ParseMethodSignature parses a generic method signature, e.g.
// "<T:Ljava/lang/Object;>(Ljava/util/List<TT;>;)TT;^Ljava/io/IOException;".
// definingClass scopes type variables that the method does not declare itself.
func ParseMethodSignature(text, definingClass string) (*MethodSignature, error) {
	p := &parser{input: text, generics: true, definingClass: definingClass}
	sig, err := p.parseMethod()
	if err != nil {
		return nil, err
	}
	sig.Source = FromSignature
	bindTypeVariables(sig)
	return sig, nil
}

// ParseMethodDescriptor parses an erased method descriptor, e.g. "(ILjava/lang/String;)V"
func ParseMethodDescriptor(text string) (*MethodSignature, error) {
	p := &parser{input: text}
	sig, err := p.parseMethod()
	if err != nil {
		return nil, err
	}
	sig.Source = FromDescriptor
	return sig, nil
}

// ParseClassSignature parses a class Signature attribute, e.g.
// "<K:Ljava/lang/Object;V:Ljava/lang/Object;>Ljava/util/AbstractMap<TK;TV;>;"
func ParseClassSignature(text, className string) (*ClassSignature, error) {
	p := &parser{input: text, generics: true, definingClass: className}
	sig := &ClassSignature{TypeParameters: []*TypeParameter{}, Interfaces: []*ClassRefType{}}

	if p.peek() == '<' {
		params, err := p.parseTypeParameters()
		if err != nil {
			return nil, err
		}
		sig.TypeParameters = params
	}

	super, err := p.parseClassType()
	if err != nil {
		return nil, err
	}
	sig.Superclass = super

	for !p.atEnd() {
		iface, err := p.parseClassType()
		if err != nil {
			return nil, err
		}
		sig.Interfaces = append(sig.Interfaces, iface)
	}
	return sig, nil
}

func (p *parser) parseMethod() (*MethodSignature, error) {
	if p.input == "" {
		return nil, p.errorf("empty method signature")
	}

	sig := &MethodSignature{
		TypeParameters: []*TypeParameter{},
		Parameters:     []TypeSignature{},
		Throws:         []ReferenceTypeSignature{},
		DefiningClass:  p.definingClass,
	}

	if p.peek() == '<' {
		params, err := p.parseTypeParameters()
		if err != nil {
			return nil, err
		}
		sig.TypeParameters = params
	}

	if err := p.expect('('); err != nil {
		return nil, err
	}
	for p.peek() != ')' {
		if p.atEnd() {
			return nil, p.errorf("unterminated parameter list")
		}
		param, err := p.parseJavaType()
		if err != nil {
			return nil, err
		}
		if IsVoid(param) {
			return nil, p.errorf("void is not a valid parameter type")
		}
		sig.Parameters = append(sig.Parameters, param)
	}
	p.pos++

	result, err := p.parseResult()
	if err != nil {
		return nil, err
	}
	sig.Result = result

	for p.peek() == '^' {
		if !p.generics {
			return nil, p.errorf("throws clause is not allowed in a descriptor")
		}
		p.pos++
		thrown, err := p.parseThrows()
		if err != nil {
			return nil, err
		}
		sig.Throws = append(sig.Throws, thrown)
	}

	if !p.atEnd() {
		return nil, p.errorf("unexpected trailing characters %q", p.input[p.pos:])
	}
	return sig, nil
}

func (p *parser) parseResult() (TypeSignature, error) {
	if p.peek() == 'V' {
		p.pos++
		return Void, nil
	}
	return p.parseJavaType()
}

func (p *parser) parseThrows() (ReferenceTypeSignature, error) {
	switch p.peek() {
	case 'L':
		return p.parseClassType()
	case 'T':
		return p.parseTypeVariable()
	default:
		return nil, p.errorf("expected class type or type variable after '^'")
	}
}

// parseJavaType reads a base type or a reference type (never void)
func (p *parser) parseJavaType() (TypeSignature, error) {
	if p.atEnd() {
		return nil, p.errorf("unexpected end of input")
	}
	c := p.peek()
	if base, ok := baseTypes[c]; ok && c != 'V' {
		p.pos++
		return base, nil
	}
	return p.parseReferenceType()
}

func (p *parser) parseReferenceType() (ReferenceTypeSignature, error) {
	switch p.peek() {
	case 'L':
		return p.parseClassType()
	case 'T':
		return p.parseTypeVariable()
	case '[':
		return p.parseArrayType()
	default:
		if p.atEnd() {
			return nil, p.errorf("unexpected end of input")
		}
		return nil, p.errorf("unexpected character %q", p.peek())
	}
}

func (p *parser) parseArrayType() (*ArrayType, error) {
	dims := 0
	for p.peek() == '[' {
		dims++
		p.pos++
	}
	elem, err := p.parseJavaType()
	if err != nil {
		return nil, err
	}
	return &ArrayType{Element: elem, Dims: dims}, nil
}

func (p *parser) parseTypeVariable() (*TypeVariable, error) {
	if !p.generics {
		return nil, p.errorf("type variable is not allowed in a descriptor")
	}
	p.pos++ // 'T'
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	return &TypeVariable{Name: name, Scope: ClassScope, DefiningClass: p.definingClass}, nil
}

func (p *parser) parseClassType() (*ClassRefType, error) {
	if err := p.expect('L'); err != nil {
		return nil, err
	}

	// Package specifier and simple name share one slash-separated run
	var segments []string
	for {
		ident, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		segments = append(segments, ident)
		if p.peek() != '/' {
			break
		}
		p.pos++
	}

	ref := &ClassRefType{
		BaseClassName:       strings.Join(segments, "."),
		TypeArguments:       []*TypeArgument{},
		Suffixes:            []string{},
		SuffixTypeArguments: [][]*TypeArgument{},
	}

	args, err := p.parseOptionalTypeArguments()
	if err != nil {
		return nil, err
	}
	ref.TypeArguments = args

	for p.peek() == '.' {
		if !p.generics {
			return nil, p.errorf("inner class suffix is not allowed in a descriptor")
		}
		p.pos++
		suffix, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		suffixArgs, err := p.parseOptionalTypeArguments()
		if err != nil {
			return nil, err
		}
		ref.Suffixes = append(ref.Suffixes, suffix)
		ref.SuffixTypeArguments = append(ref.SuffixTypeArguments, suffixArgs)
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}
	return ref, nil
}

func (p *parser) parseOptionalTypeArguments() ([]*TypeArgument, error) {
	args := []*TypeArgument{}
	if p.peek() != '<' {
		return args, nil
	}
	if !p.generics {
		return nil, p.errorf("type arguments are not allowed in a descriptor")
	}
	p.pos++
	for p.peek() != '>' {
		if p.atEnd() {
			return nil, p.errorf("unterminated type argument list")
		}
		arg, err := p.parseTypeArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.pos++
	if len(args) == 0 {
		return nil, p.errorf("empty type argument list")
	}
	return args, nil
}

func (p *parser) parseTypeArgument() (*TypeArgument, error) {
	wildcard := WildcardNone
	switch p.peek() {
	case '*':
		p.pos++
		return &TypeArgument{Wildcard: WildcardAny}, nil
	case '+':
		wildcard = WildcardExtends
		p.pos++
	case '-':
		wildcard = WildcardSuper
		p.pos++
	}
	t, err := p.parseReferenceType()
	if err != nil {
		return nil, err
	}
	return &TypeArgument{Wildcard: wildcard, Type: t}, nil
}

func (p *parser) parseTypeParameters() ([]*TypeParameter, error) {
	if !p.generics {
		return nil, p.errorf("type parameters are not allowed in a descriptor")
	}
	p.pos++ // '<'
	params := []*TypeParameter{}
	for p.peek() != '>' {
		if p.atEnd() {
			return nil, p.errorf("unterminated type parameter list")
		}
		param, err := p.parseTypeParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	p.pos++
	if len(params) == 0 {
		return nil, p.errorf("empty type parameter list")
	}
	return params, nil
}

func (p *parser) parseTypeParameter() (*TypeParameter, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	param := &TypeParameter{Name: name, InterfaceBounds: []ReferenceTypeSignature{}}

	// Class bound: ':' followed by an optional reference type
	if err := p.expect(':'); err != nil {
		return nil, err
	}
	if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
		bound, err := p.parseReferenceType()
		if err != nil {
			return nil, err
		}
		param.ClassBound = bound
	}

	for p.peek() == ':' {
		p.pos++
		bound, err := p.parseReferenceType()
		if err != nil {
			return nil, err
		}
		param.InterfaceBounds = append(param.InterfaceBounds, bound)
	}
	return param, nil
}

// parseIdentifier reads up to the next signature delimiter
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos
	for !p.atEnd() && !strings.ContainsRune(".;[/<>:", rune(p.input[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		if p.atEnd() {
			return "", p.errorf("unexpected end of input, expected identifier")
		}
		return "", p.errorf("expected identifier, found %q", p.input[p.pos])
	}
	return p.input[start:p.pos], nil
}

func (p *parser) expect(c byte) error {
	if p.atEnd() {
		return p.errorf("unexpected end of input, expected %q", c)
	}
	if p.input[p.pos] != c {
		return p.errorf("expected %q, found %q", c, p.input[p.pos])
	}
	p.pos++
	return nil
}

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.input)
}

func (p *parser) errorf(format string, args ...interface{}) *errors.SignatureError {
	err := errors.NewSignatureError(p.input, p.pos, fmt.Sprintf(format, args...))
	if p.definingClass != "" {
		err.WithContext("class", p.definingClass)
	}
	return err
}
