package platform

import (
	"runtime"
	"strings"
)

// Platform identifies the operating system a file rule applies to. The empty
// value means the rule applies everywhere.
type Platform string

const (
	Any     Platform = ""
	Windows Platform = "windows"
	MacOS   Platform = "macos"
	Linux   Platform = "linux"
)

// FromComponent maps a directory name to a platform. Mod archives use a few
// spellings for each OS (win/, MacOS/, osx/ and so on).
func FromComponent(component string) (Platform, bool) {
	switch strings.ToLower(component) {
	case "windows", "win":
		return Windows, true
	case "macos", "mac", "osx":
		return MacOS, true
	case "linux":
		return Linux, true
	default:
		return Any, false
	}
}

// Current returns the platform the process is running on.
func Current() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Any
	}
}

// Matches reports whether a rule tagged with p should be applied when
// installing on current.
func (p Platform) Matches(current Platform) bool {
	return p == Any || p == current
}

// Variants lists the directory-name spellings for a platform, used when
// stripping platform folders from target paths.
func (p Platform) Variants() []string {
	switch p {
	case Windows:
		return []string{"windows", "win"}
	case MacOS:
		return []string{"macos", "mac", "osx"}
	case Linux:
		return []string{"linux"}
	default:
		return nil
	}
}
