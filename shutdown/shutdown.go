/*
 * jacovm - A Java virtual machine core
 * Package shutdown centralizes the VM's process-exit codes, so that
 * every fatal path funnels through one function that can be stubbed
 * out in tests.
 */
package shutdown

import "os"

// ExitStatus enumerates the reasons the VM process can terminate.
type ExitStatus int

const (
	OK ExitStatus = iota
	JVM_EXCEPTION
	APP_EXCEPTION
	CLASS_NOT_FOUND
	JVM_ERROR
	JVM_MISSING_CLASS
)

// osExit is swapped out by tests so that Exit doesn't kill the test binary.
var osExit = os.Exit

// Exit terminates the process with a code derived from status. It is the
// single funnel every fatal VM path (malformed class, unhandled exception
// at the bottom frame, verifier bug) goes through.
func Exit(status ExitStatus) {
	osExit(int(status))
}
