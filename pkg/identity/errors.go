package identity

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// ErrorKind tags an upstream identity provider failure so the dispatch layer
// can map outcomes to responses without inspecting SDK error types itself.
type ErrorKind int

const (
	// KindUnknown covers any failure without a more specific kind.
	KindUnknown ErrorKind = iota
	// KindNotAuthorized means the credentials or token were rejected.
	KindNotAuthorized
	// KindUserNotConfirmed means the account exists but is unverified.
	KindUserNotConfirmed
	// KindUserNotFound means no account matches the username.
	KindUserNotFound
	// KindUsernameExists means an account with the username already exists.
	KindUsernameExists
	// KindInvalidPassword means the password fails the pool password policy.
	KindInvalidPassword
	// KindUserValidationFailed means a pre-sign-up trigger rejected the
	// registration, e.g. a duplicate email address.
	KindUserValidationFailed
	// KindCodeMismatch means the supplied verification code is wrong.
	KindCodeMismatch
	// KindInvalidParameter means the provider rejected a request parameter.
	KindInvalidParameter
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotAuthorized:
		return "not authorized"
	case KindUserNotConfirmed:
		return "user not confirmed"
	case KindUserNotFound:
		return "user not found"
	case KindUsernameExists:
		return "username exists"
	case KindInvalidPassword:
		return "invalid password"
	case KindUserValidationFailed:
		return "user validation failed"
	case KindCodeMismatch:
		return "code mismatch"
	case KindInvalidParameter:
		return "invalid parameter"
	default:
		return "unknown"
	}
}

// Error is an identity provider failure tagged with an ErrorKind.
type Error struct {
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity provider: %s: %s", e.Kind, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// NewError tags err with the given kind.
func NewError(kind ErrorKind, err error) error {
	return &Error{Kind: kind, err: err}
}

// KindOf extracts the ErrorKind from an error, returning KindUnknown for
// errors that did not originate from the identity provider adapter.
func KindOf(err error) ErrorKind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// classify wraps an SDK error with the matching ErrorKind. The operation name
// is retained in the message for server-side logs.
func classify(op string, err error) error {
	kind := KindUnknown
	var (
		notAuthorized    *types.NotAuthorizedException
		userNotConfirmed *types.UserNotConfirmedException
		userNotFound     *types.UserNotFoundException
		usernameExists   *types.UsernameExistsException
		invalidPassword  *types.InvalidPasswordException
		lambdaValidation *types.UserLambdaValidationException
		codeMismatch     *types.CodeMismatchException
		invalidParameter *types.InvalidParameterException
	)
	switch {
	case errors.As(err, &notAuthorized):
		kind = KindNotAuthorized
	case errors.As(err, &userNotConfirmed):
		kind = KindUserNotConfirmed
	case errors.As(err, &userNotFound):
		kind = KindUserNotFound
	case errors.As(err, &usernameExists):
		kind = KindUsernameExists
	case errors.As(err, &invalidPassword):
		kind = KindInvalidPassword
	case errors.As(err, &lambdaValidation):
		kind = KindUserValidationFailed
	case errors.As(err, &codeMismatch):
		kind = KindCodeMismatch
	case errors.As(err, &invalidParameter):
		kind = KindInvalidParameter
	}

	var apiErr smithy.APIError
	if kind == KindUnknown && errors.As(err, &apiErr) {
		return &Error{Kind: kind, err: fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)}
	}
	return &Error{Kind: kind, err: fmt.Errorf("%s: %w", op, err)}
}
