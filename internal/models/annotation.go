package models

import (
	"slices"
)

// AnnotationInfo is an annotation found on a method or one of its parameters.
// Element values are not decoded.
type AnnotationInfo struct {
	Name    string `json:"name"`    // binary name of the annotation type
	Visible bool   `json:"visible"` // RuntimeVisible vs RuntimeInvisible
}

// NewAnnotationInfo creates an annotation record
func NewAnnotationInfo(name string, visible bool) *AnnotationInfo {
	return &AnnotationInfo{Name: name, Visible: visible}
}

func (a *AnnotationInfo) String() string {
	return "@" + a.Name
}

// UniqueAnnotationNamesSorted returns the distinct annotation names, sorted
func UniqueAnnotationNamesSorted(annotations []*AnnotationInfo) []string {
	names := make([]string, 0, len(annotations))
	for _, a := range annotations {
		if a != nil {
			names = append(names, a.Name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
