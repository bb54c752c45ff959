/*
 * jacovm - A Java virtual machine core
 * The java launcher reads extra options out of three environment
 * variables before touching the real command line; jacovm honors the
 * same three, in the same order of application.
 */
package main

import (
	"os"
	"strings"
)

// javaEnvOptions are consulted lowest-precedence first: a later
// variable's options land after an earlier one's, and the actual
// command line (appended last by Execute) beats them all.
var javaEnvOptions = []string{"JAVA_TOOL_OPTIONS", "_JAVA_OPTIONS", "JDK_JAVA_OPTIONS"}

// envArgs collects the merged option tokens from the Java option
// environment variables; empty or unset variables contribute nothing.
func envArgs() []string {
	merged := getEnvArgs()
	if merged == "" {
		return nil
	}
	return strings.Fields(merged)
}

// getEnvArgs joins the raw values of the three option variables with
// single spaces, preserving their relative order.
func getEnvArgs() string {
	var parts []string
	for _, name := range javaEnvOptions {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			parts = append(parts, strings.TrimSpace(v))
		}
	}
	return strings.Join(parts, " ")
}
