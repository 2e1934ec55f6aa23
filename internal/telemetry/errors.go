package telemetry

import (
	"log"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/scrapmap/scrapmap/pkg/build"
)

// SetupErrorReporting configures the Sentry SDK for error reporting. It is a
// no-op when no DSN is configured, so local development runs without Sentry.
func SetupErrorReporting(dsn string, environment string) {
	if dsn == "" {
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     build.Version,
		Transport:   sentry.NewHTTPSyncTransport(),
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
}

// NewErrorReportingHandler wraps a HTTP handler with Sentry panic recovery and
// request-scoped error reporting.
func NewErrorReportingHandler(handler http.Handler) http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	return sentryHandler.Handle(handler)
}

// ReportError reports an error to Sentry
func ReportError(err error) {
	sentry.CaptureException(err)
}
