package testutil

import (
	"os"
	"runtime"
	"testing"
)

// Platform describes where the tests run.
type Platform struct {
	IsWindows bool
	IsRoot    bool
	UID       int
}

// DetectPlatform reports the platform the test runs on.
func DetectPlatform(t *testing.T) Platform {
	t.Helper()
	uid := os.Geteuid()
	return Platform{
		IsWindows: runtime.GOOS == "windows",
		IsRoot:    uid == 0,
		UID:       uid,
	}
}

// SkipIfRoot skips tests that rely on chmod to make a path unwritable,
// which root ignores.
func SkipIfRoot(t *testing.T, platform Platform, reason string) {
	t.Helper()
	if platform.IsRoot {
		t.Skipf("skipping: %s (running as root)", reason)
	}
}

// SkipIfWindows skips tests that need Unix permissions or symlinks.
func SkipIfWindows(t *testing.T, platform Platform, reason string) {
	t.Helper()
	if platform.IsWindows {
		t.Skipf("skipping: %s (windows)", reason)
	}
}
