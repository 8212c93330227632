// Package classfile reads the parts of a JVM class file that describe its
// methods: names, descriptors, generic signatures, access flags, parameter
// tables and annotation type names. Bytecode is skipped.
//
// ref - https://docs.oracle.com/javase/specs/jvms/se17/html/jvms-4.html
package classfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/models"
	"github.com/toyz/classinfo/internal/typesig"
)

// Magic is the first four bytes of every class file
const Magic = 0xCAFEBABE

// Class access flags that are not shared with methods
const (
	AccInterface  models.Modifiers = 0x0200
	AccAnnotation models.Modifiers = 0x2000
	AccEnum       models.Modifiers = 0x4000
)

// ClassFile is the method-related content of one class file
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  models.Modifiers
	ClassName    string // dotted binary name
	SuperClass   string // "" for java.lang.Object and module-info
	Interfaces   []string
	Signature    string // class Signature attribute, "" when absent
	Methods      []*Method
}

// Method is one method_info structure
type Method struct {
	AccessFlags models.Modifiers
	Name        string
	Descriptor  string
	Signature   string // "" when absent

	// MethodParameters attribute; nil when absent
	ParameterNames []string
	ParameterFlags []models.Modifiers

	Annotations          []*models.AnnotationInfo
	ParameterAnnotations [][]*models.AnnotationInfo // nil when absent
}

// Parse reads a class file from r
func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapClassfileError("read", err)
	}
	return ParseBytes(data)
}

// ParseBytes reads a class file from data
func ParseBytes(data []byte) (*ClassFile, error) {
	r := &reader{data: data}

	magic, err := r.u4("magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, errors.NewClassfileError("magic", fmt.Sprintf("bad magic %#x", magic))
	}

	cf := &ClassFile{Interfaces: []string{}, Methods: []*Method{}}
	if cf.MinorVersion, err = r.u2("minor version"); err != nil {
		return nil, err
	}
	if cf.MajorVersion, err = r.u2("major version"); err != nil {
		return nil, err
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	flags, err := r.u2("access flags")
	if err != nil {
		return nil, err
	}
	cf.AccessFlags = models.Modifiers(flags)

	thisClass, err := r.u2("this class")
	if err != nil {
		return nil, err
	}
	if cf.ClassName, err = cp.ClassName(thisClass); err != nil {
		return nil, err
	}

	superClass, err := r.u2("super class")
	if err != nil {
		return nil, err
	}
	if superClass != 0 {
		if cf.SuperClass, err = cp.ClassName(superClass); err != nil {
			return nil, err
		}
	}

	ifaceCount, err := r.u2("interfaces count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(ifaceCount); i++ {
		idx, err := r.u2("interface")
		if err != nil {
			return nil, err
		}
		name, err := cp.ClassName(idx)
		if err != nil {
			return nil, err
		}
		cf.Interfaces = append(cf.Interfaces, name)
	}

	if err := skipFields(r); err != nil {
		return nil, err
	}

	methodCount, err := r.u2("methods count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(methodCount); i++ {
		m, err := readMethod(r, cp)
		if err != nil {
			return nil, err
		}
		cf.Methods = append(cf.Methods, m)
	}

	// class attributes: only Signature matters
	err = readAttributes(r, cp, func(name string, body *reader) error {
		if name != "Signature" {
			return nil
		}
		sig, err := readSignature(body, cp)
		cf.Signature = sig
		return err
	})
	if err != nil {
		return nil, err
	}
	return cf, nil
}

func skipFields(r *reader) error {
	count, err := r.u2("fields count")
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		// access_flags, name_index, descriptor_index
		if err := r.skip(6, "field"); err != nil {
			return err
		}
		if err := skipAttributes(r); err != nil {
			return err
		}
	}
	return nil
}

func readMethod(r *reader, cp *ConstantPool) (*Method, error) {
	flags, err := r.u2("method access flags")
	if err != nil {
		return nil, err
	}
	nameIdx, err := r.u2("method name")
	if err != nil {
		return nil, err
	}
	descIdx, err := r.u2("method descriptor")
	if err != nil {
		return nil, err
	}

	m := &Method{AccessFlags: models.Modifiers(flags), Annotations: []*models.AnnotationInfo{}}
	if m.Name, err = cp.Utf8(nameIdx); err != nil {
		return nil, err
	}
	if m.Descriptor, err = cp.Utf8(descIdx); err != nil {
		return nil, err
	}

	var visibleParams, invisibleParams [][]*models.AnnotationInfo
	err = readAttributes(r, cp, func(name string, body *reader) error {
		var err error
		switch name {
		case "Signature":
			m.Signature, err = readSignature(body, cp)
		case "MethodParameters":
			m.ParameterNames, m.ParameterFlags, err = readMethodParameters(body, cp)
		case "RuntimeVisibleAnnotations":
			var annotations []*models.AnnotationInfo
			annotations, err = readAnnotations(body, cp, true)
			m.Annotations = append(m.Annotations, annotations...)
		case "RuntimeInvisibleAnnotations":
			var annotations []*models.AnnotationInfo
			annotations, err = readAnnotations(body, cp, false)
			m.Annotations = append(m.Annotations, annotations...)
		case "RuntimeVisibleParameterAnnotations":
			visibleParams, err = readParameterAnnotations(body, cp, true)
		case "RuntimeInvisibleParameterAnnotations":
			invisibleParams, err = readParameterAnnotations(body, cp, false)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	m.ParameterAnnotations = mergeParameterAnnotations(visibleParams, invisibleParams)
	return m, nil
}

// readAttributes calls fn with a reader over each attribute body
func readAttributes(r *reader, cp *ConstantPool, fn func(name string, body *reader) error) error {
	count, err := r.u2("attributes count")
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.u2("attribute name")
		if err != nil {
			return err
		}
		length, err := r.u4("attribute length")
		if err != nil {
			return err
		}
		body, err := r.bytes(int(length), "attribute body")
		if err != nil {
			return err
		}
		name, err := cp.Utf8(nameIdx)
		if err != nil {
			return err
		}
		if err := fn(name, &reader{data: body}); err != nil {
			return err
		}
	}
	return nil
}

func skipAttributes(r *reader) error {
	count, err := r.u2("attributes count")
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if err := r.skip(2, "attribute name"); err != nil {
			return err
		}
		length, err := r.u4("attribute length")
		if err != nil {
			return err
		}
		if err := r.skip(int(length), "attribute body"); err != nil {
			return err
		}
	}
	return nil
}

func readSignature(r *reader, cp *ConstantPool) (string, error) {
	idx, err := r.u2("Signature")
	if err != nil {
		return "", err
	}
	return cp.Utf8(idx)
}

func readMethodParameters(r *reader, cp *ConstantPool) ([]string, []models.Modifiers, error) {
	count, err := r.u1("MethodParameters")
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, count)
	flags := make([]models.Modifiers, count)
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.u2("MethodParameters name")
		if err != nil {
			return nil, nil, err
		}
		// index 0 means the parameter has no name
		if nameIdx != 0 {
			if names[i], err = cp.Utf8(nameIdx); err != nil {
				return nil, nil, err
			}
		}
		f, err := r.u2("MethodParameters flags")
		if err != nil {
			return nil, nil, err
		}
		flags[i] = models.Modifiers(f)
	}
	return names, flags, nil
}

// ClassKind classifies the class for a loader definition
func (cf *ClassFile) ClassKind() classloader.Kind {
	switch {
	case cf.AccessFlags.Has(AccAnnotation):
		return classloader.KindAnnotation
	case cf.AccessFlags.Has(AccInterface):
		return classloader.KindInterface
	case cf.AccessFlags.Has(AccEnum):
		return classloader.KindEnum
	default:
		return classloader.KindClass
	}
}

// ClassSignature parses the class Signature attribute. It returns nil, nil
// when the class has none.
func (cf *ClassFile) ClassSignature() (*typesig.ClassSignature, error) {
	if cf.Signature == "" {
		return nil, nil
	}
	return typesig.ParseClassSignature(cf.Signature, cf.ClassName)
}

// Definition describes the class for a classloader.Loader. Class type
// parameters are included when the Signature attribute parses.
func (cf *ClassFile) Definition() classloader.ClassDefinition {
	def := classloader.ClassDefinition{Name: cf.ClassName, Kind: cf.ClassKind()}
	if sig, err := cf.ClassSignature(); err == nil && sig != nil {
		def.TypeParameters = sig.TypeParameters
	}
	return def
}

// MethodInfos builds a models.MethodInfo for every method
func (cf *ClassFile) MethodInfos() []*models.MethodInfo {
	infos := make([]*models.MethodInfo, len(cf.Methods))
	for i, m := range cf.Methods {
		infos[i] = models.NewMethodInfo(cf.ClassName, m.Name, m.Annotations, m.AccessFlags,
			m.Descriptor, m.Signature, models.ParameterTables{
				Names:       m.ParameterNames,
				Modifiers:   m.ParameterFlags,
				Annotations: m.ParameterAnnotations,
			})
	}
	return infos
}

// PackageName returns the package of the class, "" for the default package
func (cf *ClassFile) PackageName() string {
	if i := strings.LastIndexByte(cf.ClassName, '.'); i >= 0 {
		return cf.ClassName[:i]
	}
	return ""
}
