package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scrapmap/scrapmap/pkg/build"
)

func TestRootReportsVersion(t *testing.T) {
	mux := NewServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), build.Version)
}

func TestRoutesRequireConfiguredSources(t *testing.T) {
	mux := NewServer()

	for _, target := range []string{"/v1/auth/login", "/v1/destinations", "/v1/places"} {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		res := httptest.NewRecorder()
		mux.ServeHTTP(res, req)
		require.NotEqual(t, http.StatusOK, res.Code, target)
	}
}

func TestAuthRoutesMounted(t *testing.T) {
	mux := NewServer(WithIdentitySource(&mockIdentitySource{Service: &mockService{}}))

	routes := []string{
		"/v1/auth/login",
		"/v1/auth/create_user",
		"/v1/auth/verify_user",
		"/v1/auth/refresh_tokens",
		"/v1/auth/forgot_password",
		"/v1/auth/confirm_forgot_password",
		"/v1/auth/change_password",
		"/v1/auth/resend_verification_code",
		"/v1/auth/respond_to_auth_challenge",
	}
	for _, target := range routes {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		res := httptest.NewRecorder()
		mux.ServeHTTP(res, req)
		// an empty body is a 400 from the handler, proving the route
		// dispatched rather than 404ing
		require.Equal(t, http.StatusBadRequest, res.Code, target)
	}
}

func TestTravelRoutesMounted(t *testing.T) {
	mux := NewServer(WithStoreSource(&mockStoreSource{Store: &mockStore{}}))

	testCases := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/v1/destinations"},
		{http.MethodPost, "/v1/destinations"},
		{http.MethodDelete, "/v1/places"},
		{http.MethodPost, "/v1/places"},
	}
	for _, tc := range testCases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		res := httptest.NewRecorder()
		mux.ServeHTTP(res, req)
		require.Equal(t, http.StatusBadRequest, res.Code, tc.target)
	}
}
