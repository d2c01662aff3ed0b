package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// DriverModule is the module path of the MongoDB driver.
const DriverModule = "go.mongodb.org/mongo-driver"

// Set with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// Info is the build information of the running binary.
type Info struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	GitBranch string    `json:"git_branch,omitempty" yaml:"git_branch,omitempty"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Driver    string    `json:"driver,omitempty" yaml:"driver,omitempty"`
	Dirty     bool      `json:"dirty" yaml:"dirty"`
}

// Get returns the build information of the running binary.
func Get() *Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(bi)
}

func resolve(bi *debug.BuildInfo) *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildTime = t
		}
	}

	if bi != nil {
		info.GoVersion = bi.GoVersion
		for _, dep := range bi.Deps {
			if dep.Path == DriverModule {
				info.Driver = dep.Version
			}
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime.IsZero() {
					if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
						info.BuildTime = t
					}
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// IsRelease reports whether the binary was built from a clean tagged version.
func (i *Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty && !strings.Contains(i.Version, "dirty")
}

// Short returns "<version>[-<commit>][-dirty]".
func (i *Info) Short() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// String returns the short version followed by the branch when it is not
// a mainline branch, the driver version and the build time.
func (i *Info) String() string {
	s := i.Short()
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		s += " (" + i.GitBranch + ")"
	}
	if i.Driver != "" {
		s += " mongo-driver/" + i.Driver
	}
	if !i.BuildTime.IsZero() {
		s += fmt.Sprintf(" built %s", i.BuildTime.UTC().Format(time.RFC3339))
	}
	return s
}
