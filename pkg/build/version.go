package build

// Version is the scrapmap build version. Overridden at build time via
// -ldflags="-X github.com/scrapmap/scrapmap/pkg/build.Version=<version>".
var Version = "v0.0.0-dev"
