package models

import "strings"

// Modifiers is a JVM access flag bit set (ACC_* values)
type Modifiers uint16

// Method access flags
const (
	AccPublic       Modifiers = 0x0001
	AccPrivate      Modifiers = 0x0002
	AccProtected    Modifiers = 0x0004
	AccStatic       Modifiers = 0x0008
	AccFinal        Modifiers = 0x0010
	AccSynchronized Modifiers = 0x0020
	AccBridge       Modifiers = 0x0040
	AccVarargs      Modifiers = 0x0080
	AccNative       Modifiers = 0x0100
	AccAbstract     Modifiers = 0x0400
	AccStrict       Modifiers = 0x0800
	AccSynthetic    Modifiers = 0x1000
)

// Parameter access flags, from the MethodParameters attribute
const (
	AccParamFinal     Modifiers = 0x0010
	AccParamSynthetic Modifiers = 0x1000
	AccParamMandated  Modifiers = 0x8000
)

// Has reports whether every bit of flag is set
func (m Modifiers) Has(flag Modifiers) bool {
	return m&flag == flag
}

// Visibility is the access level of a member
type Visibility int

const (
	PackagePrivate Visibility = iota
	Public
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "package-private"
	}
}

// Visibility returns the access level. A well-formed class file sets at most
// one visibility bit; if several are set, public wins over protected, and
// protected over private, so every value maps to exactly one level.
func (m Modifiers) Visibility() Visibility {
	switch {
	case m&AccPublic != 0:
		return Public
	case m&AccProtected != 0:
		return Protected
	case m&AccPrivate != 0:
		return Private
	default:
		return PackagePrivate
	}
}

// IsPackagePrivate is true when none of public, private and protected is set
func (m Modifiers) IsPackagePrivate() bool {
	return m.Visibility() == PackagePrivate
}

type modifierName struct {
	flag Modifiers
	name string
}

// java.lang.reflect.Modifier ordering after visibility, then the JVM-only flags
var methodModifierNames = []modifierName{
	{AccAbstract, "abstract"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccSynchronized, "synchronized"},
	{AccNative, "native"},
	{AccStrict, "strictfp"},
	{AccSynthetic, "synthetic"},
	{AccBridge, "bridge"},
}

var parameterModifierNames = []modifierName{
	{AccParamFinal, "final"},
	{AccParamSynthetic, "synthetic"},
	{AccParamMandated, "mandated"},
}

// MethodString renders method modifiers as they would prefix a declaration.
// Visibility comes from Visibility, so at most one level is shown. Varargs is
// not listed; it shows up as "..." on the last parameter.
func (m Modifiers) MethodString() string {
	rest := m.render(methodModifierNames)
	v := m.Visibility()
	switch {
	case v == PackagePrivate:
		return rest
	case rest == "":
		return v.String()
	default:
		return v.String() + " " + rest
	}
}

// ParameterString renders parameter modifiers
func (m Modifiers) ParameterString() string {
	return m.render(parameterModifierNames)
}

func (m Modifiers) render(names []modifierName) string {
	var parts []string
	for _, n := range names {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}
