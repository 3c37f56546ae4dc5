//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"runtime"
	"testing"
)

func TestIs64Bit(t *testing.T) {
	// We only support 64-bit platforms
	if !Is64Bit {
		t.Error("Platform should be 64-bit")
	}
	if PointerSize != 8 {
		t.Errorf("PointerSize: expected 8, got %d", PointerSize)
	}
}

func TestLibraryExtension(t *testing.T) {
	switch runtime.GOOS {
	case "darwin":
		if LibraryExtension != ".dylib" {
			t.Errorf("expected .dylib, got %s", LibraryExtension)
		}
	case "windows":
		if LibraryExtension != ".dll" {
			t.Errorf("expected .dll, got %s", LibraryExtension)
		}
	default:
		if LibraryExtension != ".so" {
			t.Errorf("expected .so, got %s", LibraryExtension)
		}
	}
}

func TestFormatLibraryName(t *testing.T) {
	tests := []struct {
		name    string
		version int
		goos    string
		want    string
	}{
		{"hdf5", 310, "linux", "libhdf5.so.310"},
		{"hdf5_serial", 103, "linux", "libhdf5_serial.so.103"},
		{"hdf5", 0, "linux", "libhdf5.so"},
		{"hdf5", 310, "darwin", "libhdf5.310.dylib"},
		{"hdf5", 0, "darwin", "libhdf5.dylib"},
		{"hdf5", 0, "windows", "hdf5.dll"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.goos, func(t *testing.T) {
			if runtime.GOOS != tt.goos {
				t.Skipf("test only applies to %s", tt.goos)
			}
			got := FormatLibraryName(tt.name, tt.version)
			if got != tt.want {
				t.Errorf("FormatLibraryName(%q, %d) = %q, want %q", tt.name, tt.version, got, tt.want)
			}
		})
	}
}

func TestLibraryNames(t *testing.T) {
	names := LibraryNames()
	if len(names) == 0 || names[0] != "hdf5" {
		t.Errorf("LibraryNames should start with hdf5, got %v", names)
	}
}
