package identity

import (
	"context"
)

// Tokens is the reshaped successful authentication payload returned to
// clients. RefreshAfter is a hint for clients to refresh ahead of expiry and
// is only populated by token refreshes.
type Tokens struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshAfter int64  `json:"refresh_after,omitempty"`
}

// Challenge is returned when the user pool requires a further interaction
// (MFA, new password, etc.) before issuing tokens.
type Challenge struct {
	Name       string            `json:"challenge_name"`
	Parameters map[string]string `json:"challenge_parameters"`
	Session    string            `json:"session"`
}

// AuthResult is the outcome of an authentication flow: exactly one of Tokens
// or Challenge is set.
type AuthResult struct {
	Tokens    *Tokens
	Challenge *Challenge
}

// Service performs user pool operations. Each call issues exactly one
// primary request to the identity provider; client-authenticated flows fetch
// the app client secret live and sign the request with it.
type Service interface {
	// Login authenticates a username and password.
	Login(ctx context.Context, username string, password string) (AuthResult, error)
	// SignUp registers a new unconfirmed account.
	SignUp(ctx context.Context, username string, password string, email string) error
	// ConfirmSignUp confirms an account with an emailed verification code.
	ConfirmSignUp(ctx context.Context, username string, confirmationCode string) error
	// RefreshTokens exchanges a refresh token for a fresh token set.
	RefreshTokens(ctx context.Context, username string, refreshToken string) (AuthResult, error)
	// ForgotPassword starts the password reset flow.
	ForgotPassword(ctx context.Context, username string) error
	// ConfirmForgotPassword completes the password reset flow.
	ConfirmForgotPassword(ctx context.Context, username string, confirmationCode string, password string) error
	// ChangePassword changes the password of an authenticated user.
	ChangePassword(ctx context.Context, accessToken string, previousPassword string, proposedPassword string) error
	// ResendConfirmationCode re-sends the account verification code.
	ResendConfirmationCode(ctx context.Context, username string) error
	// RespondToAuthChallenge answers a pending authentication challenge.
	RespondToAuthChallenge(ctx context.Context, username string, challengeName string, session string, responses map[string]string) (AuthResult, error)
}
