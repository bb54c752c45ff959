/*
 * jacovm - A Java virtual machine core
 * The jacovm command line: boot the VM's global state, load the main
 * class off the classpath (or a JAR), and run main(String[]).
 *
 * JAVA_TOOL_OPTIONS / _JAVA_OPTIONS / JDK_JAVA_OPTIONS are merged ahead
 * of the real command line (envargs.go), the same pre-parse contract
 * the java launcher honors, then everything is handed to cobra.
 */
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jacovm/classloader"
	"jacovm/gfunction"
	"jacovm/globals"
	"jacovm/jvm"
	"jacovm/log"
	"jacovm/modsys"
	"jacovm/shutdown"
	"jacovm/trace"
)

var (
	flagClasspath string
	flagJar       string
	flagVerbose   string
	flagTrace     []string
	flagNoVerify  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jacovm [flags] main-class [args...]",
		Short: "jacovm runs a Java class's main method on the jacovm interpreter core",
		Args:  cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMain,
	}
	cmd.Flags().StringVar(&flagClasspath, "classpath", ".", "class search path of directories, separated by the platform path separator")
	cmd.Flags().StringVar(&flagJar, "jar", "", "JAR to search before the classpath")
	cmd.Flags().StringVar(&flagVerbose, "verbose", "info", "log verbosity: severe, warning, info, fine, finest")
	cmd.Flags().StringSliceVar(&flagTrace, "trace", nil, "trace categories: inst, class, cloadi, verify")
	cmd.Flags().BoolVar(&flagNoVerify, "noverify", false, "skip bytecode verification (bring-up only)")
	return cmd
}

func runMain(cmd *cobra.Command, args []string) error {
	g := globals.InitGlobals(cmd.Root().Name())
	log.Init()
	trace.Init()
	if err := applyVerbosity(flagVerbose); err != nil {
		return err
	}
	applyTraceFlags(g, flagTrace)

	g.ClasspathRaw = strings.Split(flagClasspath, string(os.PathListSeparator))
	g.StartingJar = flagJar
	g.StartingClass = internalClassName(args[0])
	g.AppArgs = args[1:]

	gfunction.LoadIntrinsics()

	graph := modsys.NewGraph()
	registerStartingJarModule(graph, flagJar)

	vm := jvm.NewVM(graph)
	vm.Verify = !flagNoVerify
	thread := jvm.NewThread(1)

	return vm.RunMain(thread, g.StartingClass, g.AppArgs)
}

func applyVerbosity(level string) error {
	byName := map[string]log.Level{
		"severe":  log.SEVERE,
		"warning": log.WARNING,
		"info":    log.INFO,
		"fine":    log.FINE,
		"finest":  log.FINEST,
	}
	l, ok := byName[strings.ToLower(level)]
	if !ok {
		return fmt.Errorf("unknown verbosity %q (severe, warning, info, fine, finest)", level)
	}
	return log.SetLogLevel(l)
}

func applyTraceFlags(g *globals.Globals, categories []string) {
	for _, c := range categories {
		switch strings.ToLower(c) {
		case "inst":
			g.TraceInst = true
		case "class":
			g.TraceClass = true
		case "cloadi":
			g.TraceCloadi = true
		case "verify":
			g.TraceVerify = true
		}
	}
}

// registerStartingJarModule puts the --jar archive on the module graph:
// by its module-info descriptor when it carries one, otherwise as an
// automatic module named from the JAR file name. Classes loaded out of
// the JAR are stamped with the module via classloader.JarModules.
func registerStartingJarModule(graph *modsys.Graph, jarPath string) {
	if jarPath == "" {
		return
	}
	if class, found, err := classloader.LoadClassFromJar(&classloader.AppCL, "module-info", jarPath); err == nil && found {
		if desc, perr := classloader.ParseModuleDescriptor(class.Data); perr == nil {
			graph.AddModule(desc)
			classloader.JarModules[jarPath] = desc.Name
			return
		} else {
			trace.Error("ignoring malformed module-info in " + jarPath + ": " + perr.Error())
		}
	}
	name, err := modsys.DeriveAutomaticModuleName(jarPath)
	if err != nil {
		trace.Error("cannot derive an automatic module name for " + jarPath + ": " + err.Error())
		return
	}
	graph.AddModule(modsys.NewAutomaticDescriptor(name, nil))
	classloader.JarModules[jarPath] = name
}

// internalClassName accepts the dotted name users type (com.example.Main)
// and the internal form the VM uses throughout (com/example/Main).
func internalClassName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// Execute merges Java's option environment variables in front of the
// real command line, runs the root command, and maps the outcome to a
// process exit status.
func Execute() shutdown.ExitStatus {
	cmd := newRootCmd()
	cmd.SetArgs(append(envArgs(), os.Args[1:]...))
	err := cmd.Execute()
	if err == nil {
		return shutdown.OK
	}
	if thrown, ok := jvm.IsThrown(err); ok {
		trace.Error("Exception in thread \"main\" " + thrown.Error())
		return shutdown.APP_EXCEPTION
	}
	if classloader.IsClassFormatError(err) {
		trace.Error(err.Error())
		return shutdown.CLASS_NOT_FOUND
	}
	trace.Error(cmd.Root().Name() + ": " + err.Error())
	return shutdown.JVM_ERROR
}
