/*
 * jacovm - A Java virtual machine core
 * Package util holds small stateless helpers shared across classloader,
 * verifier, resolver, and jvm: path normalization and method/field
 * descriptor parsing. Keeping these here avoids circular imports between
 * classloader and the packages that consume descriptors.
 */
package util

import (
	"path/filepath"
	"strings"
)

// ConvertToPlatformPathSeparators swaps '/' for the host's path separator,
// used when turning an internal class name (always '/'-separated, per
// JVMS) into a filesystem path for LoadClassFromFile.
func ConvertToPlatformPathSeparators(name string) string {
	if filepath.Separator == '/' {
		return name
	}
	return strings.ReplaceAll(name, "/", string(filepath.Separator))
}

// FieldType is one parsed element of a descriptor: either a primitive
// character, "L<class>;", or an array with Dimensions > 0.
type FieldType struct {
	Descriptor string // the full descriptor text for this type, e.g. "I", "[I", "Ljava/lang/String;"
	ClassName  string // populated only for Object ("L...;") and array-of-object types
	Dimensions int
}

// ParseMethodDescriptor splits "(params)return" into its parameter field
// types (in order) and its return-type field type.
func ParseMethodDescriptor(descriptor string) (params []FieldType, ret FieldType, ok bool) {
	if len(descriptor) < 2 || descriptor[0] != '(' {
		return nil, FieldType{}, false
	}
	closeIdx := strings.IndexByte(descriptor, ')')
	if closeIdx < 0 {
		return nil, FieldType{}, false
	}
	paramsPart := descriptor[1:closeIdx]
	retPart := descriptor[closeIdx+1:]

	for len(paramsPart) > 0 {
		ft, rest, ftOk := parseOneFieldType(paramsPart)
		if !ftOk {
			return nil, FieldType{}, false
		}
		params = append(params, ft)
		paramsPart = rest
	}

	if retPart == "V" {
		return params, FieldType{Descriptor: "V"}, true
	}
	ret, rest, retOk := parseOneFieldType(retPart)
	if !retOk || rest != "" {
		return nil, FieldType{}, false
	}
	return params, ret, true
}

func parseOneFieldType(s string) (FieldType, string, bool) {
	dims := 0
	i := 0
	for i < len(s) && s[i] == '[' {
		dims++
		i++
	}
	if i >= len(s) {
		return FieldType{}, "", false
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		desc := s[:i+1]
		return FieldType{Descriptor: desc, Dimensions: dims}, s[i+1:], true
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return FieldType{}, "", false
		}
		end += i
		className := s[i+1 : end]
		return FieldType{Descriptor: s[:end+1], ClassName: className, Dimensions: dims}, s[end+1:], true
	default:
		return FieldType{}, "", false
	}
}

// ParameterSlotCount returns the number of local-variable/operand-stack
// slots a parameter list occupies: category-2 types (J, D) consume two.
func ParameterSlotCount(params []FieldType) int {
	n := 0
	for _, p := range params {
		if p.Dimensions == 0 && (p.Descriptor == "J" || p.Descriptor == "D") {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// IsCategory2Descriptor reports whether a (non-array) field descriptor
// occupies two slots.
func IsCategory2Descriptor(descriptor string) bool {
	return descriptor == "J" || descriptor == "D"
}
