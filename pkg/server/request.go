package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/golang-jwt/jwt/v4"
)

var errNoCallerIdentity = errors.New("no caller identity in request")

// callerUsername extracts the authenticated username from a request. When
// running behind API Gateway the JWT authorizer has already verified the
// token and its claims travel in the proxied request context. When serving
// locally the bearer token is decoded without verification instead.
func callerUsername(r *http.Request) (string, error) {
	if gwCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context()); ok {
		if gwCtx.Authorizer != nil && gwCtx.Authorizer.JWT != nil {
			if username := gwCtx.Authorizer.JWT.Claims["cognito:username"]; username != "" {
				return username, nil
			}
		}
	}
	return bearerUsername(r)
}

func bearerUsername(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", errNoCallerIdentity
	}
	claims := jwt.MapClaims{}
	// the gateway (or the caller, in local development) vouches for the
	// token, so the signature is not checked here
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	for _, name := range []string{"cognito:username", "username"} {
		if username, ok := claims[name].(string); ok && username != "" {
			return username, nil
		}
	}
	return "", errNoCallerIdentity
}
