package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/scrapmap/scrapmap/internal/telemetry"
	"github.com/scrapmap/scrapmap/pkg/aws"
)

// HTTPHandlerBuilder is a function that creates a http.Handler from the
// constructed AWS service.
type HTTPHandlerBuilder func(*aws.Service) (http.Handler, error)

// StartHTTPHandler starts a lambda handler that processes HTTP requests
// proxied from API Gateway.
func StartHTTPHandler(makeHandler HTTPHandlerBuilder) {
	ctx := context.Background()
	cfg, err := aws.FromEnv(ctx)
	if err != nil {
		panic(err)
	}
	telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment)

	handler, err := makeHandler(aws.Construct(cfg))
	if err != nil {
		telemetry.ReportError(err)
		panic(err)
	}

	lambda.StartWithOptions(httpadapter.NewV2(handler).ProxyWithContext, lambda.WithContext(ctx))
}
