package server

import (
	"fmt"
	"net/http"

	"github.com/scrapmap/scrapmap/pkg/identity"
)

const (
	msgServerError      = "Server Error"
	msgServerErrorRetry = "Server Error. Please try again later"
)

// NewLoginHandler authenticates a username and password against the user
// pool.
func NewLoginHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}, {"password", body.Password}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		result, err := ids.Login(r.Context(), body.Username, body.Password)
		if err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindNotAuthorized:    {http.StatusUnauthorized, "The username or password is incorrect"},
				identity.KindUserNotConfirmed: {http.StatusForbidden, "User is not confirmed"},
				identity.KindUserNotFound:     {http.StatusNotFound, "User does not exist"},
			}, msgServerErrorRetry)
			return
		}
		writeAuthResult(w, result)
	}
}

// NewCreateUserHandler registers a new unconfirmed account.
func NewCreateUserHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, "Error. Please try again later", err)
			return
		}
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Email    string `json:"email"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}, {"password", body.Password}, {"email", body.Email}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, "Error. Please try again later", err)
			return
		}
		if err := ids.SignUp(r.Context(), body.Username, body.Password, body.Email); err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindUsernameExists:       {http.StatusBadRequest, "An account with this username already exists"},
				identity.KindInvalidPassword:      {http.StatusBadRequest, "Invalid password. Password should have at least one uppercase letter, one lowercase letter and one number"},
				identity.KindUserValidationFailed: {http.StatusBadRequest, "An account with this email already exists"},
			}, "Error. Please try again later")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewVerifyUserHandler confirms an account with an emailed verification code.
func NewVerifyUserHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		var body struct {
			Username         string `json:"username"`
			ConfirmationCode string `json:"confirmation_code"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}, {"confirmation_code", body.ConfirmationCode}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		if err := ids.ConfirmSignUp(r.Context(), body.Username, body.ConfirmationCode); err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindUserNotFound:  {http.StatusNotFound, "User not found"},
				identity.KindCodeMismatch:  {http.StatusBadRequest, "Invalid verification code"},
				identity.KindNotAuthorized: {http.StatusBadRequest, "User is already confirmed"},
			}, msgServerErrorRetry)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewRefreshTokensHandler exchanges a refresh token for a fresh token set.
func NewRefreshTokensHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		var body struct {
			Username     string `json:"username"`
			RefreshToken string `json:"refresh_token"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}, {"refresh_token", body.RefreshToken}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		result, err := ids.RefreshTokens(r.Context(), body.Username, body.RefreshToken)
		if err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindNotAuthorized:    {http.StatusUnauthorized, "Invalid Token"},
				identity.KindInvalidParameter: {http.StatusBadRequest, "Invalid Parameter"},
			}, msgServerErrorRetry)
			return
		}
		writeAuthResult(w, result)
	}
}

// NewForgotPasswordHandler starts the password reset flow.
func NewForgotPasswordHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, "Server Error. Try again later", err)
			return
		}
		var body struct {
			Username string `json:"username"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, "Server Error. Try again later", err)
			return
		}
		if err := ids.ForgotPassword(r.Context(), body.Username); err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindUserNotFound:     {http.StatusNotFound, "User doesn't exist"},
				identity.KindInvalidParameter: {http.StatusBadRequest, fmt.Sprintf("User <%s> is not confirmed yet", body.Username)},
				identity.KindCodeMismatch:     {http.StatusBadRequest, "Invalid verification code"},
				identity.KindNotAuthorized:    {http.StatusForbidden, "Not authorized"},
			}, "Server Error. Try again later")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewConfirmForgotPasswordHandler completes the password reset flow.
func NewConfirmForgotPasswordHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		var body struct {
			Username         string `json:"username"`
			ConfirmationCode string `json:"confirmation_code"`
			Password         string `json:"password"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}, {"confirmation_code", body.ConfirmationCode}, {"password", body.Password}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		if err := ids.ConfirmForgotPassword(r.Context(), body.Username, body.ConfirmationCode, body.Password); err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindNotAuthorized:    {http.StatusUnauthorized, "The username or password is incorrect"},
				identity.KindUserNotConfirmed: {http.StatusForbidden, "User is not confirmed"},
			}, msgServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewChangePasswordHandler changes the password of an authenticated user.
// The access token authenticates the caller; every failure collapses to a
// generic server error.
func NewChangePasswordHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		var body struct {
			AccessToken      string `json:"access_token"`
			PreviousPassword string `json:"previous_password"`
			ProposedPassword string `json:"proposed_password"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"access_token", body.AccessToken}, {"previous_password", body.PreviousPassword}, {"proposed_password", body.ProposedPassword}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		if err := ids.ChangePassword(r.Context(), body.AccessToken, body.PreviousPassword, body.ProposedPassword); err != nil {
			respondUpstream(w, err, nil, msgServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewResendVerificationCodeHandler re-sends the account verification code.
func NewResendVerificationCodeHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerError, err)
			return
		}
		var body struct {
			Username string `json:"username"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}}
		})
		if !ok {
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerError, err)
			return
		}
		if err := ids.ResendConfirmationCode(r.Context(), body.Username); err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindInvalidParameter: {http.StatusBadRequest, "User is already confirmed"},
				identity.KindUserNotFound:     {http.StatusNotFound, "User does not exist"},
			}, msgServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewRespondToAuthChallengeHandler answers a pending authentication
// challenge. The response is reshaped like every other auth operation:
// either a token set or the next challenge.
func NewRespondToAuthChallengeHandler(source IdentitySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.CheckConfig(); err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		var body struct {
			Username           string            `json:"username"`
			ChallengeName      string            `json:"challenge_name"`
			ChallengeResponses map[string]string `json:"challenge_responses"`
			Session            string            `json:"session"`
		}
		ok := decodeBody(w, r, &body, func() []field {
			return []field{{"username", body.Username}, {"challenge_name", body.ChallengeName}, {"session", body.Session}}
		})
		if !ok {
			return
		}
		if body.ChallengeResponses == nil {
			writeMessage(w, http.StatusBadRequest, `Invalid Request Body: missing field "challenge_responses"`)
			return
		}
		ids, err := source.Identity(r.Context())
		if err != nil {
			serverError(w, msgServerErrorRetry, err)
			return
		}
		result, err := ids.RespondToAuthChallenge(r.Context(), body.Username, body.ChallengeName, body.Session, body.ChallengeResponses)
		if err != nil {
			respondUpstream(w, err, map[identity.ErrorKind]errorResponse{
				identity.KindNotAuthorized:    {http.StatusUnauthorized, "Invalid Request"},
				identity.KindUserNotConfirmed: {http.StatusForbidden, "User is not confirmed"},
			}, msgServerErrorRetry)
			return
		}
		writeAuthResult(w, result)
	}
}
