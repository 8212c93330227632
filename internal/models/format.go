package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/classinfo/internal/typesig"
)

// String renders the method as a Java-like declaration, e.g.
//
//	@java.lang.Deprecated public <T> T get(final java.lang.Class<T> type) throws java.io.IOException
//
// It uses only data already parsed. If the signature cannot be parsed it falls
// back to "ClassName.methodName descriptor".
func (m *MethodInfo) String() string {
	sig, err := m.TypeSignature()
	if err != nil {
		return fmt.Sprintf("%s.%s %s", m.className, m.methodName, m.descriptor)
	}

	var buf strings.Builder
	for _, a := range m.annotations {
		buf.WriteString(a.String())
		buf.WriteByte(' ')
	}

	if m.IsStaticInitializer() {
		buf.WriteString("static")
		return buf.String()
	}

	if mods := m.ModifiersStr(); mods != "" {
		buf.WriteString(mods)
		buf.WriteByte(' ')
	}
	if len(sig.TypeParameters) > 0 {
		buf.WriteString(typesig.JoinStrings(sig.TypeParameters, "<", ", ", "> "))
	}
	if m.IsConstructor() {
		buf.WriteString(simpleClassName(m.className))
	} else {
		buf.WriteString(sig.Result.String())
		buf.WriteByte(' ')
		buf.WriteString(m.methodName)
	}

	params, _ := m.Parameters()
	_, namesValid := m.ParameterNames()
	buf.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			buf.WriteString(", ")
		}
		for _, a := range p.Annotations {
			buf.WriteString(a.String())
			buf.WriteByte(' ')
		}
		if p.HasModifiers {
			if mods := p.Modifiers.ParameterString(); mods != "" {
				buf.WriteString(mods)
				buf.WriteByte(' ')
			}
		}
		buf.WriteString(parameterTypeString(p.Type, m.IsVarArgs() && i == len(params)-1))
		if namesValid {
			buf.WriteByte(' ')
			if p.HasName {
				buf.WriteString(p.Name)
			} else {
				buf.WriteString("_unnamed_param_" + strconv.Itoa(i))
			}
		}
	}
	buf.WriteByte(')')

	if len(sig.Throws) > 0 {
		buf.WriteString(typesig.JoinStrings(sig.Throws, " throws ", ", ", ""))
	}
	return buf.String()
}

// parameterTypeString renders a varargs parameter as "Elem..."
func parameterTypeString(t typesig.TypeSignature, varargs bool) string {
	arr, ok := t.(*typesig.ArrayType)
	if !varargs || !ok {
		return t.String()
	}
	if arr.Dims == 1 {
		return arr.Element.String() + "..."
	}
	return (&typesig.ArrayType{Element: arr.Element, Dims: arr.Dims - 1}).String() + "..."
}

func simpleClassName(className string) string {
	name := className[strings.LastIndexByte(className, '.')+1:]
	return name[strings.LastIndexByte(name, '$')+1:]
}
