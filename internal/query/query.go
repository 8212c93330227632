// Package query parses method queries such as
// "com.example.Repository.find(java.lang.Object, int[])" and matches them
// against scanned methods.
package query

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/models"
	"github.com/toyz/classinfo/internal/typesig"
)

// queryAST is the grammar root
type queryAST struct {
	Path   []string      `parser:"@(Ident | Init) ( '.' @(Ident | Init) )*"`
	Params *paramListAST `parser:"@@?"`
}

type paramListAST struct {
	Open  string      `parser:"@'('"`
	Types []*paramAST `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type paramAST struct {
	Name    []string `parser:"@Ident ( '.' @Ident )*"`
	Dims    []string `parser:"@Dims*"`
	Varargs bool     `parser:"@Ellipsis?"`
}

var queryParser = participle.MustBuild[queryAST](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Init", Pattern: `<(init|clinit)>`},
		{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
		{Name: "Ellipsis", Pattern: `\.\.\.`},
		{Name: "Dims", Pattern: `\[\s*\]`},
		{Name: "Punct", Pattern: `[.,()]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// MethodQuery selects methods by class, name and optionally parameter types.
// Class and parameter names without a package match on the simple name.
type MethodQuery struct {
	Class     string
	Method    string
	Params    []string // normalized, e.g. "java.lang.String[]"
	HasParams bool     // false matches every overload
}

// Parse parses query text
func Parse(text string) (*MethodQuery, error) {
	ast, err := queryParser.ParseString("", text)
	if err != nil {
		return nil, errors.NewQueryError(text, err)
	}
	if len(ast.Path) < 2 {
		return nil, errors.NewQueryError(text, fmt.Errorf("expected Class.method, got %q", strings.Join(ast.Path, ".")))
	}
	for _, part := range ast.Path[:len(ast.Path)-1] {
		if strings.HasPrefix(part, "<") {
			return nil, errors.NewQueryError(text, fmt.Errorf("%s is only valid as the method name", part))
		}
	}

	q := &MethodQuery{
		Class:  normalize(strings.Join(ast.Path[:len(ast.Path)-1], ".")),
		Method: ast.Path[len(ast.Path)-1],
	}
	if ast.Params != nil {
		q.HasParams = true
		q.Params = make([]string, len(ast.Params.Types))
		for i, p := range ast.Params.Types {
			if p.Varargs && i != len(ast.Params.Types)-1 {
				return nil, errors.NewQueryError(text, fmt.Errorf("only the last parameter may be varargs"))
			}
			dims := len(p.Dims)
			if p.Varargs {
				dims++
			}
			q.Params[i] = normalize(strings.Join(p.Name, ".")) + strings.Repeat("[]", dims)
		}
	}
	return q, nil
}

// MustParse is Parse for queries known to be valid
func MustParse(text string) *MethodQuery {
	q, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return q
}

// Matches reports whether m is selected by the query. Parameters are
// compared on the erased descriptor types, so generic methods are matched
// by their erasure.
func (q *MethodQuery) Matches(m *models.MethodInfo) bool {
	if m == nil || m.MethodName() != q.Method || !nameMatches(q.Class, normalize(m.ClassName())) {
		return false
	}
	if !q.HasParams {
		return true
	}

	desc, err := typesig.ParseMethodDescriptor(m.TypeDescriptorStr())
	if err != nil || len(desc.Parameters) != len(q.Params) {
		return false
	}
	for i, p := range desc.Parameters {
		if !nameMatches(q.Params[i], normalize(p.String())) {
			return false
		}
	}
	return true
}

// Filter returns the methods the query matches, in order
func (q *MethodQuery) Filter(methods []*models.MethodInfo) []*models.MethodInfo {
	var out []*models.MethodInfo
	for _, m := range methods {
		if q.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

func (q *MethodQuery) String() string {
	s := q.Class + "." + q.Method
	if q.HasParams {
		s += "(" + strings.Join(q.Params, ", ") + ")"
	}
	return s
}

// nameMatches compares a query name with a fully qualified one. A query
// name without a '.' matches the simple name; array suffixes must agree.
func nameMatches(query, full string) bool {
	if query == full {
		return true
	}
	if strings.Contains(strings.TrimRight(query, "[]"), ".") {
		return false
	}
	return strings.HasSuffix(full, "."+query)
}

func normalize(name string) string {
	return strings.ReplaceAll(name, "$", ".")
}
