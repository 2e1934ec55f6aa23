package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	logging "github.com/ipfs/go-log/v2"

	"github.com/scrapmap/scrapmap/pkg/build"
	"github.com/scrapmap/scrapmap/pkg/identity"
	"github.com/scrapmap/scrapmap/pkg/store/travelstore"
)

var log = logging.Logger("server")

// IdentitySource builds a per-invocation, role-scoped identity service.
type IdentitySource interface {
	// CheckConfig reports a missing configuration value required by
	// identity operations. It performs no network calls.
	CheckConfig() error
	// Identity acquires a scoped credential and returns an identity
	// service valid for the current invocation.
	Identity(ctx context.Context) (identity.Service, error)
}

// StoreSource builds per-invocation, role-scoped travel stores.
type StoreSource interface {
	CheckReadConfig() error
	CheckWriteConfig() error
	// Reader returns a store backed by the read role, recorded under the
	// given role session name.
	Reader(ctx context.Context, roleSession string) (travelstore.Store, error)
	// Writer returns a store backed by the write role.
	Writer(ctx context.Context, roleSession string) (travelstore.Store, error)
}

type config struct {
	identities IdentitySource
	stores     StoreSource
}

type Option func(*config)

// WithIdentitySource configures the source of identity service clients.
func WithIdentitySource(source IdentitySource) Option {
	return func(c *config) {
		c.identities = source
	}
}

// WithStoreSource configures the source of travel store clients.
func WithStoreSource(source StoreSource) Option {
	return func(c *config) {
		c.stores = source
	}
}

// ListenAndServe creates a new scrapmap API server, and starts it up.
func ListenAndServe(addr string, opts ...Option) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewServer(opts...),
	}
	log.Infof("Listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewServer creates a mux routing every API operation. Routes are only
// mounted for the sources that have been configured.
func NewServer(opts ...Option) *http.ServeMux {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", getRootHandler())
	if c.identities != nil {
		mux.Handle("POST /v1/auth/login", NewLoginHandler(c.identities))
		mux.Handle("POST /v1/auth/create_user", NewCreateUserHandler(c.identities))
		mux.Handle("POST /v1/auth/verify_user", NewVerifyUserHandler(c.identities))
		mux.Handle("POST /v1/auth/refresh_tokens", NewRefreshTokensHandler(c.identities))
		mux.Handle("POST /v1/auth/forgot_password", NewForgotPasswordHandler(c.identities))
		mux.Handle("POST /v1/auth/confirm_forgot_password", NewConfirmForgotPasswordHandler(c.identities))
		mux.Handle("POST /v1/auth/change_password", NewChangePasswordHandler(c.identities))
		mux.Handle("POST /v1/auth/resend_verification_code", NewResendVerificationCodeHandler(c.identities))
		mux.Handle("POST /v1/auth/respond_to_auth_challenge", NewRespondToAuthChallengeHandler(c.identities))
	}
	if c.stores != nil {
		mux.Handle("GET /v1/destinations", NewListDestinationsHandler(c.stores))
		mux.Handle("POST /v1/destinations", NewCreateDestinationHandler(c.stores))
		mux.Handle("DELETE /v1/places", NewDeletePlaceHandler(c.stores))
		mux.Handle("POST /v1/places", NewCreatePlaceHandler(c.stores))
	}
	return mux
}

// getRootHandler displays version info when a GET request is sent to "/".
func getRootHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "scrapmap API %s\n", build.Version)
	}
}
