/*
 * jacovm - A Java virtual machine core
 * Automatic module naming from a JAR path, following the JAR-to-module-name
 * rules used when a JAR on the module path carries no module-info.
 */
package modsys

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlphaNumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// DeriveAutomaticModuleName derives an automatic module's name from its
// JAR's file name. It returns an error if the final dotted identifier is
// invalid.
func DeriveAutomaticModuleName(jarPath string) (string, error) {
	name := filepath.Base(jarPath)
	name = strings.TrimSuffix(name, ".jar")

	// Step 2: find the first "-<digit>" scanning from the right, and drop
	// that hyphen and everything after it as the version suffix.
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '-' && i+1 < len(name) && name[i+1] >= '0' && name[i+1] <= '9' {
			name = name[:i]
			break
		}
	}

	// Step 3: collapse runs of non-alphanumeric characters to one dot.
	name = nonAlphaNumRun.ReplaceAllString(name, ".")

	// Step 4: strip leading/trailing dots.
	name = strings.Trim(name, ".")

	if err := validateModuleName(name); err != nil {
		return "", err
	}
	return name, nil
}

func validateModuleName(name string) error {
	if name == "" {
		return errInvalidModuleName("empty module name")
	}
	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return errInvalidModuleName("empty segment (leading, trailing, or consecutive dot) in %q", name)
		}
		c := segment[0]
		if !(c == '_' || c == '$' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			return errInvalidModuleName("segment %q must not start with a digit", segment)
		}
		for i := 1; i < len(segment); i++ {
			c := segment[i]
			if !(c == '_' || c == '$' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
				return errInvalidModuleName("segment %q contains an invalid character", segment)
			}
		}
	}
	return nil
}

type invalidModuleNameError struct{ msg string }

func (e *invalidModuleNameError) Error() string { return "invalid automatic module name: " + e.msg }

func errInvalidModuleName(format string, args ...any) error {
	return &invalidModuleNameError{msg: fmt.Sprintf(format, args...)}
}
