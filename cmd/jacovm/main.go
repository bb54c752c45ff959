/*
 * jacovm - A Java virtual machine core
 * Process entry point: everything interesting lives in root.go's cobra
 * command so tests can drive the command without spawning a process.
 */
package main

import (
	"jacovm/shutdown"
)

func main() {
	shutdown.Exit(Execute())
}
