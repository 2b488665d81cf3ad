// Package version reports which porydex build is running.
//
// Release builds stamp the variables below with -ldflags. Anything left unset
// is filled from the VCS information the Go toolchain records in the binary,
// so a plain `go build` from a checkout still reports its commit.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/teranos/porydex/version.Version=v0.3.0 -X github.com/teranos/porydex/version.Commit=$(git rev-parse HEAD)"
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

// withBuildInfo fills fields ldflags left unset from the module version and
// vcs.* settings of bi.
func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// Short renders "porydex <version>[@<commit>]", e.g. "porydex dev@abcdef1".
// Builds from a modified tree get a "+dirty" suffix.
func (i Info) Short() string {
	s := "porydex " + i.Version
	if i.Commit == "" {
		return s
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	s += "@" + commit
	if i.Modified {
		s += "+dirty"
	}
	return s
}

func (i Info) String() string {
	s := i.Short()
	if i.Date != "" {
		s += ", built " + i.Date
	}
	return s + " (" + i.GoVersion + " " + i.Platform + ")"
}
