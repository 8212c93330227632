package classfile

import (
	"fmt"
	"strings"

	"github.com/toyz/classinfo/internal/models"
)

// readAnnotations reads a Runtime(In)VisibleAnnotations body, keeping only type names
func readAnnotations(r *reader, cp *ConstantPool, visible bool) ([]*models.AnnotationInfo, error) {
	count, err := r.u2("annotations count")
	if err != nil {
		return nil, err
	}
	annotations := make([]*models.AnnotationInfo, 0, count)
	for i := 0; i < int(count); i++ {
		a, err := readAnnotation(r, cp, visible)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

// readParameterAnnotations reads a Runtime(In)VisibleParameterAnnotations body
func readParameterAnnotations(r *reader, cp *ConstantPool, visible bool) ([][]*models.AnnotationInfo, error) {
	count, err := r.u1("parameter annotations count")
	if err != nil {
		return nil, err
	}
	params := make([][]*models.AnnotationInfo, count)
	for i := range params {
		if params[i], err = readAnnotations(r, cp, visible); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func readAnnotation(r *reader, cp *ConstantPool, visible bool) (*models.AnnotationInfo, error) {
	typeIdx, err := r.u2("annotation type")
	if err != nil {
		return nil, err
	}
	desc, err := cp.Utf8(typeIdx)
	if err != nil {
		return nil, err
	}
	name, err := annotationName(desc)
	if err != nil {
		return nil, r.fail("annotation type", err.Error())
	}

	pairs, err := r.u2("annotation element count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(pairs); i++ {
		if err := r.skip(2, "annotation element name"); err != nil {
			return nil, err
		}
		if err := skipElementValue(r); err != nil {
			return nil, err
		}
	}
	return models.NewAnnotationInfo(name, visible), nil
}

// skipElementValue steps over an element_value without decoding it
func skipElementValue(r *reader) error {
	tag, err := r.u1("element value tag")
	if err != nil {
		return err
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		return r.skip(2, "element value")
	case 'e':
		return r.skip(4, "enum element value")
	case '@':
		if err := r.skip(2, "nested annotation type"); err != nil {
			return err
		}
		pairs, err := r.u2("nested annotation element count")
		if err != nil {
			return err
		}
		for i := 0; i < int(pairs); i++ {
			if err := r.skip(2, "annotation element name"); err != nil {
				return err
			}
			if err := skipElementValue(r); err != nil {
				return err
			}
		}
		return nil
	case '[':
		n, err := r.u2("array element count")
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := skipElementValue(r); err != nil {
				return err
			}
		}
		return nil
	default:
		return r.fail("element value", fmt.Sprintf("unknown tag %q", tag))
	}
}

// annotationName turns a field descriptor such as "Ljava/lang/Deprecated;" into a binary name
func annotationName(desc string) (string, error) {
	if len(desc) < 3 || desc[0] != 'L' || desc[len(desc)-1] != ';' {
		return "", fmt.Errorf("annotation type %q is not a class descriptor", desc)
	}
	return strings.ReplaceAll(desc[1:len(desc)-1], "/", "."), nil
}

// mergeParameterAnnotations combines the visible and invisible tables. A table
// missing on one side contributes nothing. Tables of different lengths cannot
// be lined up by position, so the merged table is reported absent.
func mergeParameterAnnotations(visible, invisible [][]*models.AnnotationInfo) [][]*models.AnnotationInfo {
	switch {
	case visible == nil:
		return invisible
	case invisible == nil:
		return visible
	case len(visible) != len(invisible):
		return nil
	}
	merged := make([][]*models.AnnotationInfo, len(visible))
	for i := range merged {
		merged[i] = make([]*models.AnnotationInfo, 0, len(visible[i])+len(invisible[i]))
		merged[i] = append(merged[i], visible[i]...)
		merged[i] = append(merged[i], invisible[i]...)
	}
	return merged
}
