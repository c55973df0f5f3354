// Package version holds the build version, overridable with
// -ldflags "-X cctvmap/pkg/version.Version=...".
package version

var Version = "v0.4.0"
