//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading the HDF5 shared library and registering
// library-wide function bindings using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/h5go/internal/platform"
)

// ErrNotLoaded is returned when HDF5 functions are called before Load().
var ErrNotLoaded = errors.New("h5go: HDF5 library not loaded; call h5go.Init() first")

// ErrLibraryNotFound is returned when the HDF5 shared library cannot be found.
var ErrLibraryNotFound = errors.New("h5go: HDF5 library not found")

// ErrUnsupportedVersion is returned for HDF5 releases older than 1.10,
// where hid_t is still 32 bits wide.
var ErrUnsupportedVersion = errors.New("h5go: HDF5 1.10 or newer required")

// Environment variables consulted while searching for the library.
const (
	// EnvLibrary names an explicit shared library file to load.
	EnvLibrary = "HDF5_LIBRARY"
	// EnvDir names an HDF5 installation prefix; $HDF5_DIR/lib is searched first.
	EnvDir = "HDF5_DIR"
)

// soVersions are the shared object versions of the 1.14, 1.12 and 1.10 series.
var soVersions = []int{310, 320, 300, 200, 103, 102, 101, 100}

// Version is an HDF5 library release number.
type Version struct {
	Major, Minor, Release uint32
}

// String formats the version as major.minor.release.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Release)
}

// AtLeast reports whether v is the given major.minor release or newer.
func (v Version) AtLeast(major, minor uint32) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

var (
	libHDF5  uintptr
	libPath  string
	version  Version
	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Library-wide function bindings
var (
	h5open          func() int32
	h5getLibversion func(major, minor, release *uint32) int32
	h5eSetAuto2     func(estack int64, fn uintptr, data uintptr) int32
)

// IsLoaded returns true if the HDF5 library has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads the HDF5 library and registers the library-wide bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
// Returns an error if the library cannot be found or loaded.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	lib, path, err := loadLibrary(soVersions)
	if err != nil {
		return fmt.Errorf("loading libhdf5: %w", err)
	}
	libHDF5, libPath = lib, path

	purego.RegisterLibFunc(&h5open, libHDF5, "H5open")
	purego.RegisterLibFunc(&h5getLibversion, libHDF5, "H5get_libversion")
	purego.RegisterLibFunc(&h5eSetAuto2, libHDF5, "H5Eset_auto2")

	if ret := h5open(); ret < 0 {
		return fmt.Errorf("h5go: H5open failed (%d)", ret)
	}
	if ret := h5getLibversion(&version.Major, &version.Minor, &version.Release); ret < 0 {
		return fmt.Errorf("h5go: H5get_libversion failed (%d)", ret)
	}
	if !version.AtLeast(1, 10) {
		return fmt.Errorf("%w: found %s", ErrUnsupportedVersion, version)
	}

	// The default error handler prints the whole error stack to stderr on
	// every failing call, including the H5Iget_type queries made by Wrap.
	h5eSetAuto2(0, 0, 0)
	return nil
}

// loadLibrary attempts to load HDF5 by trying the explicit path, then
// versioned and unversioned names in every search path.
func loadLibrary(versions []int) (uintptr, string, error) {
	if explicit := os.Getenv(EnvLibrary); explicit != "" {
		lib, err := tryOpen(explicit)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, explicit, err)
		}
		return lib, explicit, nil
	}

	for _, name := range platform.LibraryNames() {
		for _, searchPath := range LibrarySearchPaths() {
			for _, candidate := range candidateNames(name, versions) {
				fullPath := filepath.Join(searchPath, candidate)
				if lib, err := tryOpen(fullPath); err == nil {
					return lib, fullPath, nil
				}
			}
		}
	}

	// Let the system loader resolve the name
	for _, name := range platform.LibraryNames() {
		for _, candidate := range candidateNames(name, versions) {
			if lib, err := tryOpen(candidate); err == nil {
				return lib, candidate, nil
			}
		}
	}

	return 0, "", fmt.Errorf("%w: %v", ErrLibraryNotFound, platform.LibraryNames())
}

// candidateNames returns versioned names first (more specific), then the
// unversioned development symlink.
func candidateNames(name string, versions []int) []string {
	names := make([]string, 0, len(versions)+1)
	for _, ver := range versions {
		names = append(names, platform.FormatLibraryName(name, ver))
	}
	return append(names, platform.FormatLibraryName(name, 0))
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_GLOBAL.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return lib, nil
}

// FindLibrary searches for the HDF5 library and returns its full path.
// This is useful for diagnostics.
func FindLibrary() (string, error) {
	if explicit := os.Getenv(EnvLibrary); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, explicit)
		}
		return explicit, nil
	}
	for _, name := range platform.LibraryNames() {
		for _, searchPath := range LibrarySearchPaths() {
			for _, candidate := range candidateNames(name, soVersions) {
				fullPath := filepath.Join(searchPath, candidate)
				if _, err := os.Stat(fullPath); err == nil {
					return fullPath, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %v", ErrLibraryNotFound, platform.LibraryNames())
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	if dir := os.Getenv(EnvDir); dir != "" {
		paths = append(paths, filepath.Join(dir, "lib"))
	}

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu/hdf5/serial",
			"/usr/lib/aarch64-linux-gnu/hdf5/serial",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/lib64",
			"/usr/local/lib",
			"/usr/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/opt/hdf5/lib", // Homebrew (Apple Silicon)
			"/usr/local/opt/hdf5/lib",    // Homebrew (Intel)
			"/opt/homebrew/lib",
			"/usr/local/lib",
			"/opt/local/lib", // MacPorts
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// LibraryVersion returns the loaded HDF5 version.
// Returns the zero Version if the library is not loaded.
func LibraryVersion() Version {
	if !loaded {
		return Version{}
	}
	return version
}

// LibHDF5 returns the HDF5 library handle.
func LibHDF5() uintptr {
	return libHDF5
}

// LibraryPath returns the path the library was loaded from.
func LibraryPath() string {
	return libPath
}

// Symbol resolves an exported data symbol (such as H5T_NATIVE_INT32_g)
// and returns its address.
func Symbol(name string) (uintptr, error) {
	if err := Load(); err != nil {
		return 0, err
	}
	return purego.Dlsym(libHDF5, name)
}
