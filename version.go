package bazaar

// Release is the semantic version of the marketplace ledger.
const Release = "v0.1.0-dev"

// GitCommit is set at build time with
//
//	-ldflags "-X github.com/iov-one/bazaar.GitCommit=$(git rev-parse --short HEAD)"
var GitCommit = ""

// Version returns the release, followed by the commit when known. The
// daemon reports it on /info and in its version command.
func Version() string {
	if GitCommit == "" {
		return Release
	}
	return Release + " " + GitCommit
}
