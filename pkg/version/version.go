package version

import "runtime/debug"

// Name is the binary name reported by --version.
const Name = "tb"

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/toolbar/pkg/version.Version=v1.2.3"
var Version = "v0.1.0"

// String returns "tb <version>", with the VCS revision appended when the
// binary was built from a checkout.
func String() string {
	s := Name + " " + Version
	if rev := revision(); rev != "" {
		s += " (" + rev + ")"
	}
	return s
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, kv := range info.Settings {
		if kv.Key == "vcs.revision" && len(kv.Value) >= 7 {
			return kv.Value[:7]
		}
	}
	return ""
}
