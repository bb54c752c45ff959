/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 *
 * This file turns the class-file codec into a loader: it reads .class
 * bytes off disk or out of a JAR and hands back a registered *Class,
 * tying the decoded record to AppCL/BootstrapCL/ExtensionCL. Class bytes
 * are read via mmap (github.com/edsrzf/mmap-go) rather than slurped into
 * a []byte with io.ReadAll, the same technique used for mapping other
 * binary-format images on disk.
 */
package classloader

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
	"jacovm/globals"
	"jacovm/log"
	"jacovm/trace"
	"jacovm/types"
	"jacovm/util"
)

// Class-loading status: a single-byte Status field on each Class.
const (
	StatusNotLoaded byte = 'N'
	StatusLoading   byte = 'I'
	StatusFormatted byte = 'F' // decoded + format-checked, not yet verified
	StatusVerified  byte = 'V' // verified, ready for execution
)

// Class is a loaded, registered class: the decoded ClassFile plus the
// bookkeeping the rest of the VM needs (load status, owning module,
// <clinit> run state).
type Class struct {
	Name       string
	Module     string
	Status     byte
	Data       *ClassFile
	ClInit     int // types.NoClinit / ClInitNotRun / ClInitRun / ClInitRunning
}

// Classloader is a named loader in the delegation chain: an injected
// class-loader capability the resolver consults.
type Classloader struct {
	Name       string
	Parent     string
	ClassCount int
	Archives   map[string]*Archive
}

// Archive wraps an opened JAR/zip so its central directory is parsed once.
type Archive struct {
	Path   string
	mapped mmap.MMap
	zr     *zip.Reader
}

func (a *Archive) Close() error {
	if a.mapped != nil {
		return a.mapped.Unmap()
	}
	return nil
}

var (
	AppCL       = Classloader{Name: "application", Archives: map[string]*Archive{}}
	BootstrapCL = Classloader{Name: "bootstrap", Archives: map[string]*Archive{}}
	ExtensionCL = Classloader{Name: "extension", Archives: map[string]*Archive{}}
)

var (
	classesMu sync.Mutex
	Classes   = map[string]*Class{}
)

// JarModules maps an opened JAR's path to the module its classes belong
// to: the name from its module-info descriptor, or its derived
// automatic-module name. Classes loaded out of that JAR get
// Class.Module stamped from here; everything else stays in the unnamed
// module.
var JarModules = map[string]string{}

// Reset clears the class table; used between test runs.
func Reset() {
	classesMu.Lock()
	defer classesMu.Unlock()
	Classes = map[string]*Class{}
}

// GetClass returns the registered class by internal name, or nil.
func GetClass(name string) *Class {
	classesMu.Lock()
	defer classesMu.Unlock()
	return Classes[name]
}

// RegisterSynthetic registers (or returns) a class with no backing
// class file: bootstrap classes like java/lang/Object when no JDK image
// is on the classpath, and holder classes whose methods exist only in
// the intrinsic registry. Synthetic classes have no methods or fields
// of their own; hierarchy walks treat them as direct subclasses of
// nothing (SuperclassName "" ends every chain at them).
func RegisterSynthetic(name string) *Class {
	classesMu.Lock()
	defer classesMu.Unlock()
	if c, ok := Classes[name]; ok {
		return c
	}
	c := &Class{Name: name, Status: StatusVerified, ClInit: types.NoClinit}
	Classes[name] = c
	return c
}

// beginLoad registers a StatusLoading placeholder for name, returning
// (existing, true) if the class was already present so the caller can
// wait/recheck instead of double-loading.
func beginLoad(name string) (*Class, bool) {
	classesMu.Lock()
	defer classesMu.Unlock()
	if existing, ok := Classes[name]; ok {
		return existing, true
	}
	placeholder := &Class{Name: name, Status: StatusLoading}
	Classes[name] = placeholder
	return placeholder, false
}

func finishLoad(name string, class *Class) {
	classesMu.Lock()
	defer classesMu.Unlock()
	Classes[name] = class
}

// LoadClassFromBytes decodes and registers a class from raw bytes already
// in memory (used directly by tests, and by LoadClassFromFile/Jar).
func LoadClassFromBytes(name string, data []byte) (*Class, error) {
	if existing, already := beginLoad(name); already && existing.Status != StatusLoading {
		return existing, nil
	}

	cf, err := Decode(data)
	if err != nil {
		trace.Error("LoadClassFromBytes: " + name + ": " + err.Error())
		return nil, err
	}

	class := &Class{Name: name, Data: cf, Status: StatusFormatted}
	if len(cf.Methods) > 0 {
		class.ClInit = clinitStatus(cf)
	}
	finishLoad(name, class)
	log.Log("class "+name+" loaded", log.CLASS)
	if globals.GetGlobalRef().TraceClass {
		trace.Trace("LoadClassFromBytes: loaded " + name)
	}
	return class, nil
}

func clinitStatus(cf *ClassFile) int {
	for _, m := range cf.Methods {
		name, err := cf.ConstantPool.Utf8(m.NameIndex)
		if err == nil && name == "<clinit>" {
			return types.ClInitNotRun
		}
	}
	return types.NoClinit
}

// LoadClassFromFile mmaps filename and decodes it as a class named
// className (internal, '/'-separated form).
func LoadClassFromFile(className, filename string) (*Class, error) {
	path := util.ConvertToPlatformPathSeparators(filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, CFE("cannot open class file %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, CFE("cannot stat class file %s: %v", path, err)
	}
	if info.Size() == 0 {
		return nil, CFE("class file %s is empty", path)
	}

	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Some filesystems refuse to mmap; fall back to a plain read so
		// loading still succeeds.
		data, rerr := io.ReadAll(f)
		if rerr != nil {
			return nil, CFE("cannot read class file %s: %v", path, rerr)
		}
		return LoadClassFromBytes(className, data)
	}
	defer mapped.Unmap()

	data := make([]byte, len(mapped))
	copy(data, mapped)
	return LoadClassFromBytes(className, data)
}

// LoadClassFromNameOnly searches the classloader's classpath entries (and
// any already-open archives) for className + ".class".
func LoadClassFromNameOnly(cl *Classloader, className string) error {
	validName := util.ConvertToPlatformPathSeparators(className)
	if globals.GetGlobalRef().TraceCloadi {
		trace.Trace("LoadClassFromNameOnly: " + validName)
	}

	if jarPath := globals.GetGlobalRef().StartingJar; jarPath != "" {
		if _, found, err := LoadClassFromJar(cl, className, jarPath); err == nil && found {
			return nil
		}
	}

	for _, dir := range globals.GetGlobalRef().ClasspathRaw {
		fname := filepath.Join(dir, validName+".class")
		if _, err := os.Stat(fname); err == nil {
			_, err := LoadClassFromFile(className, fname)
			return err
		}
	}
	return CFE("class not found on classpath: %s", className)
}

// LoadClassFromJar opens (or reuses) jarPath as a zip archive and loads
// className from it if present.
func LoadClassFromJar(cl *Classloader, className, jarPath string) (*Class, bool, error) {
	archive, err := openArchive(cl, jarPath)
	if err != nil {
		return nil, false, err
	}

	entryName := strings.ReplaceAll(className, string(filepath.Separator), "/") + ".class"
	for _, zf := range archive.zr.File {
		if zf.Name == entryName {
			rc, err := zf.Open()
			if err != nil {
				return nil, false, CFE("cannot open jar entry %s: %v", entryName, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, false, CFE("cannot read jar entry %s: %v", entryName, err)
			}
			class, err := LoadClassFromBytes(className, data)
			if err == nil && class != nil {
				if m, ok := JarModules[jarPath]; ok {
					class.Module = m
				}
			}
			return class, true, err
		}
	}
	return nil, false, nil
}

func openArchive(cl *Classloader, jarPath string) (*Archive, error) {
	if cl.Archives == nil {
		cl.Archives = map[string]*Archive{}
	}
	if a, ok := cl.Archives[jarPath]; ok {
		return a, nil
	}

	f, err := os.Open(jarPath)
	if err != nil {
		return nil, CFE("cannot open jar %s: %v", jarPath, err)
	}
	defer f.Close()

	var data []byte
	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		data, err = io.ReadAll(f)
		if err != nil {
			return nil, CFE("cannot read jar %s: %v", jarPath, err)
		}
	} else {
		data = make([]byte, len(mapped))
		copy(data, mapped)
		mapped.Unmap()
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, CFE("cannot open jar %s as zip: %v", jarPath, err)
	}

	archive := &Archive{Path: jarPath, zr: zr}
	cl.Archives[jarPath] = archive
	return archive, nil
}
