package version

// Injected at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildDate = "unknown"
)

type Info struct {
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

func Get() Info {
	return Info{
		GitCommit: gitCommit,
		BuildDate: buildDate,
	}
}
