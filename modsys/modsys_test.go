/*
 * jacovm - A Java virtual machine core
 * Readability, export qualification, open qualification, the unnamed
 * module, automatic descriptors, and the canonical denial text.
 */
package modsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// graphFixture builds:
//
//	alpha: requires beta
//	beta:  exports b/pub; exports b/gamma only to gamma; opens b/refl to alpha
//	gamma: requires transitive beta
//	delta: requires gamma (reads beta only through gamma's transitive edge)
func graphFixture() *Graph {
	g := NewGraph()
	g.AddModule(&Descriptor{
		Name:     "alpha",
		Requires: []Requires{{Name: "beta"}},
		Packages: map[string]bool{"a": true},
	})
	g.AddModule(&Descriptor{
		Name: "beta",
		Exports: []Qualified{
			{Package: "b/pub"},
			{Package: "b/gamma", To: []string{"gamma"}},
		},
		Opens:    []Qualified{{Package: "b/refl", To: []string{"alpha"}}},
		Packages: map[string]bool{"b/pub": true, "b/gamma": true, "b/refl": true, "b/int": true},
	})
	g.AddModule(&Descriptor{
		Name:     "gamma",
		Requires: []Requires{{Name: "beta", Flags: RequiresTransitive}},
		Packages: map[string]bool{"g": true},
	})
	g.AddModule(&Descriptor{
		Name:     "delta",
		Requires: []Requires{{Name: "gamma"}},
		Packages: map[string]bool{"d": true},
	})
	return g
}

func TestReadsDirectAndTransitive(t *testing.T) {
	g := graphFixture()
	assert.True(t, g.Reads("alpha", "beta"))
	assert.True(t, g.Reads("delta", "gamma"))
	// delta reads beta through gamma's `requires transitive beta`.
	assert.True(t, g.Reads("delta", "beta"))
	// beta requires nothing; it reads only itself.
	assert.False(t, g.Reads("beta", "alpha"))
	// alpha requires only beta, and beta requires nothing, so nothing
	// leads from alpha to gamma.
	assert.False(t, g.Reads("alpha", "gamma"))
}

func TestUnnamedModuleReadsEverything(t *testing.T) {
	g := graphFixture()
	assert.True(t, g.Reads(UnnamedModuleName, "beta"))
	assert.Equal(t, Allowed, g.CheckAccess(UnnamedModuleName, "beta", "b/pub"))
}

func TestCheckAccess(t *testing.T) {
	g := graphFixture()

	assert.Equal(t, Allowed, g.CheckAccess("alpha", "alpha", "a"))
	assert.Equal(t, Allowed, g.CheckAccess("alpha", "beta", "b/pub"))

	// alpha reads beta but b/gamma is exported only to gamma.
	assert.Equal(t, NotExported, g.CheckAccess("alpha", "beta", "b/gamma"))
	assert.Equal(t, Allowed, g.CheckAccess("gamma", "beta", "b/gamma"))

	// beta does not read alpha at all.
	assert.Equal(t, NotReadable, g.CheckAccess("beta", "alpha", "a"))

	// An unexported internal package stays internal even to readers.
	assert.Equal(t, NotExported, g.CheckAccess("alpha", "beta", "b/int"))
}

func TestCheckOpenAccess(t *testing.T) {
	g := graphFixture()

	// b/refl is opened (not exported) to alpha: reflective access only.
	assert.Equal(t, NotExported, g.CheckAccess("alpha", "beta", "b/refl"))
	assert.Equal(t, Allowed, g.CheckOpenAccess("alpha", "beta", "b/refl"))
	assert.Equal(t, NotOpened, g.CheckOpenAccess("gamma", "beta", "b/refl"))

	// An exported package is implicitly open enough for reflection.
	assert.Equal(t, Allowed, g.CheckOpenAccess("alpha", "beta", "b/pub"))
}

func TestOpenModuleOpensEverything(t *testing.T) {
	g := NewGraph()
	g.AddModule(&Descriptor{Name: "reader", Requires: []Requires{{Name: "opened"}}})
	g.AddModule(&Descriptor{Name: "opened", Flags: ModuleOpen, Packages: map[string]bool{"p": true}})

	assert.Equal(t, Allowed, g.CheckOpenAccess("reader", "opened", "p"))
	assert.Equal(t, NotExported, g.CheckAccess("reader", "opened", "p"))
}

func TestRelaxedStdlibAccess(t *testing.T) {
	g := NewGraph()
	prev := RelaxStdlibAccess
	defer func() { RelaxStdlibAccess = prev }()

	RelaxStdlibAccess = true
	assert.Equal(t, Allowed, g.CheckAccess("app", "java.base", "java/lang"))

	RelaxStdlibAccess = false
	assert.Equal(t, NotReadable, g.CheckAccess("app", "java.base", "java/lang"))
}

func TestAutomaticDescriptor(t *testing.T) {
	d := NewAutomaticDescriptor("guava", []string{"com/google/common/collect", "com/google/common/base"})
	assert.True(t, d.IsAutomatic())

	var requiresBase bool
	for _, r := range d.Requires {
		if r.Name == "java.base" {
			requiresBase = true
		}
	}
	assert.True(t, requiresBase)

	g := NewGraph()
	g.AddModule(d)
	g.AddModule(&Descriptor{Name: "app", Requires: []Requires{{Name: "guava"}}})
	assert.Equal(t, Allowed, g.CheckAccess("app", "guava", "com/google/common/collect"))
	assert.Equal(t, Allowed, g.CheckOpenAccess("app", "guava", "com/google/common/base"))

	// even packages the descriptor never saw are exported: automatic
	// modules export and open everything
	assert.Equal(t, Allowed, g.CheckAccess("app", "guava", "com/google/common/hash"))
}

func TestIllegalAccessErrorText(t *testing.T) {
	msg := IllegalAccessError("alpha", "beta", "b/gamma/Widget", NotReadable)
	assert.Contains(t, msg, "module alpha does not read module beta")

	msg = IllegalAccessError("alpha", "beta", "b/gamma/Widget", NotExported)
	assert.Contains(t, msg, "does not export")
	assert.Contains(t, msg, "alpha")
	assert.Contains(t, msg, "b/gamma/Widget")

	msg = IllegalAccessError("alpha", "beta", "b/refl/Widget", NotOpened)
	assert.Contains(t, msg, "does not open")
}
