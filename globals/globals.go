/*
 * jacovm - A Java virtual machine core
 * Package globals holds the single Globals struct that every other
 * package reaches through GetGlobalRef: one VM-scoped singleton rather
 * than scattered package-level vars. It is process-wide by default but
 * is initialized explicitly by InitGlobals so tests can reset it.
 */
package globals

import "sync"

// Globals is the VM-instance-scoped state every subsystem can see.
type Globals struct {
	JacobinName string
	StrictJDK   bool

	// Command-line / environment derived configuration.
	ClasspathRaw []string
	StartingJar  string
	StartingClass string
	AppArgs      []string

	// Tracing / logging knobs, set by -verbose / -Xlog style flags.
	TraceClass   bool
	TraceCloadi  bool
	TraceVerify  bool
	TraceInst    bool

	// JvmFrameStackShown prevents a fatal-error frame dump from being
	// printed twice for the same unhandled exception.
	JvmFrameStackShown bool

	// LoaderWg lets concurrent class-loading goroutines (if any) be
	// waited on before the VM proceeds to execute main().
	LoaderWg sync.WaitGroup

	// FuncThrowException is set by the jvm package during startup so
	// that classloader (which must not import jvm, to avoid a cycle)
	// can still raise a Java exception on a loading failure.
	FuncThrowException func(excClassName string, msg string)

	// JavaHome / JacobinHome are retained for module resolution
	// (java.base lives here) though intrinsic bodies are out of scope.
	JavaHome    string
	JacobinHome string
}

var (
	global   *Globals
	globalMu sync.Mutex
)

// InitGlobals (re)initializes the singleton; name is typically os.Args[0]
// or "test" from unit tests.
func InitGlobals(name string) *Globals {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = &Globals{
		JacobinName:         name,
		FuncThrowException:  func(string, string) {},
	}
	return global
}

// GetGlobalRef returns the current singleton, initializing an empty one
// on first use so packages that only read configuration never see nil.
func GetGlobalRef() *Globals {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = &Globals{FuncThrowException: func(string, string) {}}
	}
	return global
}
