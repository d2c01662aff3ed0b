// Package version reports build information for multimongo binaries.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/multimongo/version.Version=1.2.0" ./cmd/multimongo
//
// Values left empty are filled from the embedded module build info when
// available, including the version of the MongoDB driver linked in.
package version
