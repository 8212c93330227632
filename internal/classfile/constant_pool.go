package classfile

import (
	"fmt"
	"strings"

	"github.com/toyz/classinfo/internal/errors"
)

// ConstantTag identifies the kind of a constant pool entry
type ConstantTag uint8

const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

// payload sizes of the fixed-width entries
var constantSizes = map[ConstantTag]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagClass:              2,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

type constant struct {
	tag  ConstantTag
	utf8 string // TagUtf8
	ref  uint16 // first index of Class, String, MethodType, Module, Package
}

// ConstantPool holds the entries a method scan needs. Index 0 and the slot
// after each Long or Double are unusable, as in the class file.
type ConstantPool struct {
	entries []constant
}

func readConstantPool(r *reader) (*ConstantPool, error) {
	count, err := r.u2("constant pool count")
	if err != nil {
		return nil, err
	}
	cp := &ConstantPool{entries: make([]constant, count)}

	for i := 1; i < int(count); i++ {
		t, err := r.u1("constant pool tag")
		if err != nil {
			return nil, err
		}
		tag := ConstantTag(t)

		switch tag {
		case TagUtf8:
			n, err := r.u2("utf8 length")
			if err != nil {
				return nil, err
			}
			raw, err := r.bytes(int(n), "utf8 bytes")
			if err != nil {
				return nil, err
			}
			s, err := decodeModifiedUTF8(raw)
			if err != nil {
				return nil, r.fail("utf8 bytes", err.Error())
			}
			cp.entries[i] = constant{tag: tag, utf8: s}
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			ref, err := r.u2("constant reference")
			if err != nil {
				return nil, err
			}
			cp.entries[i] = constant{tag: tag, ref: ref}
		default:
			size, ok := constantSizes[tag]
			if !ok {
				return nil, r.fail("constant pool", fmt.Sprintf("unknown tag %d at index %d", tag, i))
			}
			if err := r.skip(size, "constant pool entry"); err != nil {
				return nil, err
			}
			cp.entries[i] = constant{tag: tag}
			if tag == TagLong || tag == TagDouble {
				i++
			}
		}
	}
	return cp, nil
}

// Len returns the constant pool count, one more than the highest index
func (cp *ConstantPool) Len() int {
	return len(cp.entries)
}

// Tag returns the tag of entry index, or 0 for unusable slots
func (cp *ConstantPool) Tag(index uint16) ConstantTag {
	if int(index) >= len(cp.entries) {
		return 0
	}
	return cp.entries[index].tag
}

// Utf8 returns the string of a Utf8 entry
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	if int(index) >= len(cp.entries) || cp.entries[index].tag != TagUtf8 {
		return "", errors.NewClassfileError("constant pool", fmt.Sprintf("index %d is not a Utf8 entry", index))
	}
	return cp.entries[index].utf8, nil
}

// ClassName returns the dotted binary name referenced by a Class entry
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	if int(index) >= len(cp.entries) || cp.entries[index].tag != TagClass {
		return "", errors.NewClassfileError("constant pool", fmt.Sprintf("index %d is not a Class entry", index))
	}
	internal, err := cp.Utf8(cp.entries[index].ref)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(internal, "/", "."), nil
}
