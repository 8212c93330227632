package models

import (
	"cmp"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// MethodKey is the identity of a method: the same class, name and erased
// descriptor always denote the same method, whatever the signature,
// annotations or modifiers say
type MethodKey struct {
	ClassName  string
	MethodName string
	Descriptor string
}

// Key returns the identity of m, usable as a map key
func (m *MethodInfo) Key() MethodKey {
	return MethodKey{ClassName: m.className, MethodName: m.methodName, Descriptor: m.descriptor}
}

// Equal reports whether m and other have the same identity
func (m *MethodInfo) Equal(other *MethodInfo) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Key() == other.Key()
}

// Hash returns a hash of the identity, consistent with Equal
func (m *MethodInfo) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(m.className)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(m.methodName)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(m.descriptor)
	return d.Sum64()
}

// Compare orders methods by class name, then method name, then descriptor
func (m *MethodInfo) Compare(other *MethodInfo) int {
	if c := cmp.Compare(m.className, other.className); c != 0 {
		return c
	}
	if c := cmp.Compare(m.methodName, other.methodName); c != 0 {
		return c
	}
	return cmp.Compare(m.descriptor, other.descriptor)
}

// SortMethods sorts methods in place by Compare
func SortMethods(methods []*MethodInfo) {
	slices.SortStableFunc(methods, (*MethodInfo).Compare)
}

// DedupeMethods returns the methods sorted with duplicates removed. The first
// occurrence of each identity is kept. The input slice is not modified.
func DedupeMethods(methods []*MethodInfo) []*MethodInfo {
	out := slices.Clone(methods)
	SortMethods(out)
	return slices.CompactFunc(out, (*MethodInfo).Equal)
}
