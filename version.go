package claimdeployer

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Build info, set with -ldflags "-X github.com/0xPolygon/claimdeployer.Version=..."
var (
	Version   = "v0.1.0"
	GitRev    = "undefined"
	GitBranch = "undefined"
	BuildDate = "undefined"
)

// BuildInfo describes the running claimdeployer binary
type BuildInfo struct {
	Version   string
	GitRev    string
	GitBranch string
	BuildDate string
	GoVersion string
	Platform  string
}

type buildField struct {
	key   string
	label string
	value string
}

// GetVersion returns the build info of the binary
func GetVersion() BuildInfo {
	return BuildInfo{
		Version:   Version,
		GitRev:    GitRev,
		GitBranch: GitBranch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// PrintVersion writes the build info to w, one field per line
func PrintVersion(w io.Writer) {
	fmt.Fprint(w, GetVersion().String())
}

func (b BuildInfo) fields() []buildField {
	return []buildField{
		{"version", "Version", b.Version},
		{"gitRevision", "Git revision", b.GitRev},
		{"gitBranch", "Git branch", b.GitBranch},
		{"goVersion", "Go version", b.GoVersion},
		{"built", "Built", b.BuildDate},
		{"platform", "OS/Arch", b.Platform},
	}
}

// Fields returns the build info as key values for structured logs
func (b BuildInfo) Fields() []interface{} {
	fields := b.fields()
	kv := make([]interface{}, 0, 2*len(fields)) //nolint:mnd
	for _, f := range fields {
		kv = append(kv, f.key, f.value)
	}
	return kv
}

func (b BuildInfo) String() string {
	var sb strings.Builder
	for _, f := range b.fields() {
		fmt.Fprintf(&sb, "%-14s%s\n", f.label+":", f.value)
	}
	return sb.String()
}
