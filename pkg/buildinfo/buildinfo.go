// Package buildinfo exposes the version stamped into the binary.
package buildinfo

import (
	"encoding/json"
	"net/http"
	"runtime"
	"runtime/debug"
)

// ServiceName identifies this binary in logs, traces and /version.
const ServiceName = "moodsense"

// These vars are set at build time via ldflags:
// -X github.com/otherjamesbrown/moodsense/pkg/buildinfo.Version=v0.3.0
// -X github.com/otherjamesbrown/moodsense/pkg/buildinfo.Commit=1f2e3d4
// -X github.com/otherjamesbrown/moodsense/pkg/buildinfo.BuildTime=2026-10-01T09:00:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info holds build information for a service.
type Info struct {
	ServiceName string `json:"service_name" yaml:"service_name"`
	Version     string `json:"version" yaml:"version"`
	Commit      string `json:"commit" yaml:"commit"`
	BuildTime   string `json:"build_time" yaml:"build_time"`
	GoVersion   string `json:"go_version" yaml:"go_version"`
}

// Get returns build info for the named service. When the binary was built
// without ldflags, the commit and time fall back to the VCS stamp the Go
// toolchain embeds.
func Get(serviceName string) Info {
	info := Info{
		ServiceName: serviceName,
		Version:     Version,
		Commit:      Commit,
		BuildTime:   BuildTime,
		GoVersion:   runtime.Version(),
	}
	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "unknown":
				info.Commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && info.BuildTime == "unknown":
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns a human-readable one-liner like "v0.3.0 (1f2e3d4, 2026-10-01T09:00:00Z)".
func String() string {
	info := Get(ServiceName)
	return info.Version + " (" + info.Commit + ", " + info.BuildTime + ")"
}

// Handler returns an HTTP handler that responds with build info JSON.
func Handler(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Get(serviceName))
	}
}
