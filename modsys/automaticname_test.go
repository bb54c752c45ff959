/*
 * jacovm - A Java virtual machine core
 * The four canonical derivation vectors plus the validator's rejection
 * cases (empty result, dot placement, leading digits).
 */
package modsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAutomaticModuleName(t *testing.T) {
	for _, tc := range []struct {
		jar  string
		want string
	}{
		{"foo-bar.jar", "foo.bar"},
		{"foo-bar-1.2.3.jar", "foo.bar"},
		{"guava-31.1-jre.jar", "guava"},
		{"my_library-2.0.jar", "my.library"},
		{"/some/deep/dir/foo-bar-1.2.3.jar", "foo.bar"},
		{"plain.jar", "plain"},
	} {
		got, err := DeriveAutomaticModuleName(tc.jar)
		require.NoError(t, err, tc.jar)
		assert.Equal(t, tc.want, got, tc.jar)
	}
}

func TestDeriveAutomaticModuleNameRejectsInvalid(t *testing.T) {
	for _, jar := range []string{
		"-1.0.jar",   // nothing left once the version suffix is dropped
		"---.jar",    // collapses to nothing
		"9lives.jar", // segment starts with a digit
		"4-2.jar",    // digit segment after version strip
	} {
		_, err := DeriveAutomaticModuleName(jar)
		assert.Error(t, err, jar)
	}
}

func TestValidateModuleNameSegments(t *testing.T) {
	assert.NoError(t, validateModuleName("alpha.beta_2.$gamma"))
	assert.Error(t, validateModuleName(""))
	assert.Error(t, validateModuleName(".alpha"))
	assert.Error(t, validateModuleName("alpha."))
	assert.Error(t, validateModuleName("alpha..beta"))
	assert.Error(t, validateModuleName("alpha.2beta"))
}
