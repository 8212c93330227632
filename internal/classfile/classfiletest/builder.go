// Package classfiletest assembles class file bytes for tests.
package classfiletest

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"strings"
)

const (
	tagUtf8  = 1
	tagLong  = 5
	tagClass = 7
)

// Param is one MethodParameters entry. An empty Name writes name index 0.
type Param struct {
	Name  string
	Flags uint16
}

// Element is one annotation element with raw element_value bytes
type Element struct {
	Name  string
	Value []byte
}

// Annotation is an annotation of the dotted Type
type Annotation struct {
	Type     string
	Elements []Element
}

// Method describes a method_info. Nil tables omit their attribute.
type Method struct {
	Access          uint16
	Name            string
	Descriptor      string
	Signature       string
	Params          []Param
	Visible         []Annotation
	Invisible       []Annotation
	VisibleParams   [][]Annotation
	InvisibleParams [][]Annotation
	WithCode        bool
}

// Class builds one class file
type Class struct {
	Access     uint16
	Name       string
	Super      string
	Interfaces []string
	Signature  string
	Fields     int
	Methods    []Method
	LongConst  bool // adds a two-slot constant ahead of everything else

	pool      bytes.Buffer
	poolCount uint16
	utf8s     map[string]uint16
	classes   map[string]uint16
}

// NewClass starts a public class extending java.lang.Object
func NewClass(name string) *Class {
	return &Class{
		Access: 0x0021,
		Name:   name,
		Super:  "java.lang.Object",
	}
}

func (b *Class) utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	idx := b.poolCount
	b.pool.WriteByte(tagUtf8)
	writeU2(&b.pool, uint16(len(s)))
	b.pool.WriteString(s)
	b.poolCount++
	b.utf8s[s] = idx
	return idx
}

func (b *Class) class(dotted string) uint16 {
	if idx, ok := b.classes[dotted]; ok {
		return idx
	}
	nameIdx := b.utf8(strings.ReplaceAll(dotted, ".", "/"))
	idx := b.poolCount
	b.pool.WriteByte(tagClass)
	writeU2(&b.pool, nameIdx)
	b.poolCount++
	b.classes[dotted] = idx
	return idx
}

func (b *Class) long(v int64) {
	b.pool.WriteByte(tagLong)
	_ = binary.Write(&b.pool, binary.BigEndian, v)
	b.poolCount += 2
}

func (b *Class) annotation(buf *bytes.Buffer, a Annotation) {
	writeU2(buf, b.utf8("L"+strings.ReplaceAll(a.Type, ".", "/")+";"))
	writeU2(buf, uint16(len(a.Elements)))
	for _, e := range a.Elements {
		writeU2(buf, b.utf8(e.Name))
		buf.Write(e.Value)
	}
}

func (b *Class) annotations(list []Annotation) []byte {
	var buf bytes.Buffer
	writeU2(&buf, uint16(len(list)))
	for _, a := range list {
		b.annotation(&buf, a)
	}
	return buf.Bytes()
}

func (b *Class) parameterAnnotations(params [][]Annotation) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(params)))
	for _, p := range params {
		buf.Write(b.annotations(p))
	}
	return buf.Bytes()
}

type attribute struct {
	name string
	body []byte
}

func (b *Class) writeAttributes(buf *bytes.Buffer, attrs []attribute) {
	writeU2(buf, uint16(len(attrs)))
	for _, a := range attrs {
		writeU2(buf, b.utf8(a.name))
		writeU4(buf, uint32(len(a.body)))
		buf.Write(a.body)
	}
}

func (b *Class) method(buf *bytes.Buffer, m Method) {
	writeU2(buf, m.Access)
	writeU2(buf, b.utf8(m.Name))
	writeU2(buf, b.utf8(m.Descriptor))

	var attrs []attribute
	if m.WithCode {
		// max_stack, max_locals, code_length=1 (return), no exceptions, no attributes
		attrs = append(attrs, attribute{"Code", []byte{0, 1, 0, 1, 0, 0, 0, 1, 0xB1, 0, 0, 0, 0}})
	}
	if m.Signature != "" {
		attrs = append(attrs, attribute{"Signature", u2Bytes(b.utf8(m.Signature))})
	}
	if m.Params != nil {
		var body bytes.Buffer
		body.WriteByte(byte(len(m.Params)))
		for _, p := range m.Params {
			if p.Name == "" {
				writeU2(&body, 0)
			} else {
				writeU2(&body, b.utf8(p.Name))
			}
			writeU2(&body, p.Flags)
		}
		attrs = append(attrs, attribute{"MethodParameters", body.Bytes()})
	}
	if m.Visible != nil {
		attrs = append(attrs, attribute{"RuntimeVisibleAnnotations", b.annotations(m.Visible)})
	}
	if m.Invisible != nil {
		attrs = append(attrs, attribute{"RuntimeInvisibleAnnotations", b.annotations(m.Invisible)})
	}
	if m.VisibleParams != nil {
		attrs = append(attrs, attribute{"RuntimeVisibleParameterAnnotations", b.parameterAnnotations(m.VisibleParams)})
	}
	if m.InvisibleParams != nil {
		attrs = append(attrs, attribute{"RuntimeInvisibleParameterAnnotations", b.parameterAnnotations(m.InvisibleParams)})
	}
	b.writeAttributes(buf, attrs)
}

// Build returns the class file bytes. It may be called more than once.
func (b *Class) Build() []byte {
	b.pool.Reset()
	b.poolCount = 1
	b.utf8s = map[string]uint16{}
	b.classes = map[string]uint16{}

	if b.LongConst {
		b.long(1 << 40)
	}
	thisIdx := b.class(b.Name)
	var superIdx uint16
	if b.Super != "" {
		superIdx = b.class(b.Super)
	}
	ifaceIdx := make([]uint16, len(b.Interfaces))
	for i, iface := range b.Interfaces {
		ifaceIdx[i] = b.class(iface)
	}

	// body is written first so every constant it needs lands in the pool
	var body bytes.Buffer
	writeU2(&body, b.Access)
	writeU2(&body, thisIdx)
	writeU2(&body, superIdx)
	writeU2(&body, uint16(len(ifaceIdx)))
	for _, idx := range ifaceIdx {
		writeU2(&body, idx)
	}

	writeU2(&body, uint16(b.Fields))
	for i := 0; i < b.Fields; i++ {
		writeU2(&body, 0x0002)
		writeU2(&body, b.utf8("field"))
		writeU2(&body, b.utf8("I"))
		b.writeAttributes(&body, []attribute{{"ConstantValue", u2Bytes(b.utf8("field"))}})
	}

	writeU2(&body, uint16(len(b.Methods)))
	for _, m := range b.Methods {
		b.method(&body, m)
	}

	var attrs []attribute
	if b.Signature != "" {
		attrs = append(attrs, attribute{"Signature", u2Bytes(b.utf8(b.Signature))})
	}
	attrs = append(attrs, attribute{"SourceFile", u2Bytes(b.utf8("Test.java"))})
	b.writeAttributes(&body, attrs)

	var out bytes.Buffer
	writeU4(&out, 0xCAFEBABE)
	writeU2(&out, 0)
	writeU2(&out, 61)
	writeU2(&out, b.poolCount)
	out.Write(b.pool.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

// EntryPath is the jar entry path of the class, e.g. "com/example/Foo.class"
func (b *Class) EntryPath() string {
	return strings.ReplaceAll(b.Name, ".", "/") + ".class"
}

// Jar zips entries (path to content) into jar bytes
func Jar(entries map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeU2(buf *bytes.Buffer, v uint16) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeU4(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func u2Bytes(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
