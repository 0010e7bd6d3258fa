// Package version holds build metadata, set with -ldflags at release time.
package version

import (
	"fmt"
	"runtime"
)

var (
	// GitRelease is the released tag, or "dev" for local builds.
	GitRelease = "dev"
	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date of GitCommit.
	GitCommitDate = "unknown"
	// GoInfo is the toolchain and platform the binary was built with.
	GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
)

// Info is the printable form of the build metadata.
type Info struct {
	Release string `json:"release" yaml:"release"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{Release: GitRelease, Commit: GitCommit, Date: GitCommitDate, Go: GoInfo}
}
