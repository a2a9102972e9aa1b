// nolint
package version

import "fmt"

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit       string
	SolanaGoRelease string

	Version string
)

const NodeVersion = "0.3.0"

func init() {
	Version = fmt.Sprintf("Pixeld Release: %s;", NodeVersion)
	if GitCommit != "" {
		Version += fmt.Sprintf(" Pixeld Commit: %s;", GitCommit)
	}
	if SolanaGoRelease != "" {
		Version += fmt.Sprintf(" solana-go Release: %s;", SolanaGoRelease)
	}
}
