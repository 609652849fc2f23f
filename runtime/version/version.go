// Package version executes and returns the version string for the
// currently running process.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// The value of these vars are set through linker options.
var gitCommit = "Local build"
var buildDate = "Moments ago"
var gitTag = "Unknown"

// Version returns the version string of this build.
func Version() string {
	if buildDate == "{DATE}" {
		buildDate = time.Now().Format(time.RFC3339)
	}
	return fmt.Sprintf("restaking/%s/%s. Built at: %s with %s", gitTag, gitCommit, buildDate, runtime.Version())
}
