package version

// overridden at build time via -ldflags
var (
	Version     = "dev"
	BuildDate   = ""
	GitCommit   = ""
	FullVersion = composeVersion()
)

func composeVersion() string {
	ret := Version
	if GitCommit != "" {
		ret += " (" + GitCommit + ")"
	}
	if BuildDate != "" {
		ret += " built " + BuildDate
	}
	return ret
}
