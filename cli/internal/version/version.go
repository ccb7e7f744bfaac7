// Package version carries build metadata stamped in by the linker.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is overridden at release build time.
	Version = "0.1.0"
	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
)

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("butane version %s (%s/%s %s)",
		Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// Full returns the multi-line version report.
func Full() string {
	return fmt.Sprintf("butane version %s\nGit Commit: %s\nPlatform: %s/%s\nGo Version: %s",
		Version, GitCommit, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
