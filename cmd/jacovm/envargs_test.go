/*
 * jacovm - A Java virtual machine core
 * Environment-variable option merging, kept behavior-compatible with
 * the java launcher: unset variables contribute nothing, set ones are
 * joined in JAVA_TOOL_OPTIONS, _JAVA_OPTIONS, JDK_JAVA_OPTIONS order.
 */
package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvArgsAllAbsent(t *testing.T) {
	for _, name := range javaEnvOptions {
		t.Setenv(name, "")
	}
	assert.Equal(t, "", getEnvArgs())
	assert.Nil(t, envArgs())
}

func TestEnvArgsTwoPresent(t *testing.T) {
	t.Setenv("JAVA_TOOL_OPTIONS", "")
	t.Setenv("_JAVA_OPTIONS", "Hello,")
	t.Setenv("JDK_JAVA_OPTIONS", "Jacovm!")

	assert.Equal(t, "Hello, Jacovm!", getEnvArgs())
	assert.Equal(t, []string{"Hello,", "Jacovm!"}, envArgs())
}

func TestEnvArgsOrderedBeforeCommandLine(t *testing.T) {
	t.Setenv("JAVA_TOOL_OPTIONS", "--verbose fine")
	t.Setenv("_JAVA_OPTIONS", "")
	t.Setenv("JDK_JAVA_OPTIONS", "--trace inst")

	assert.Equal(t, []string{"--verbose", "fine", "--trace", "inst"}, envArgs())
}

func TestInternalClassName(t *testing.T) {
	assert.Equal(t, "com/example/Main", internalClassName("com.example.Main"))
	assert.Equal(t, "Main", internalClassName("Main"))
}
