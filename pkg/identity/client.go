package identity

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// Auth flow parameter names understood by the user pool.
const (
	paramUsername     = "USERNAME"
	paramPassword     = "PASSWORD"
	paramRefreshToken = "REFRESH_TOKEN"
	paramSecretHash   = "SECRET_HASH"
)

// ErrNoAuthResult means the provider returned neither tokens nor a challenge.
var ErrNoAuthResult = errors.New("neither authentication result nor challenge present in response")

// API is the subset of the Cognito identity provider client used by Client.
type API interface {
	InitiateAuth(ctx context.Context, params *cognito.InitiateAuthInput, optFns ...func(*cognito.Options)) (*cognito.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cognito.SignUpInput, optFns ...func(*cognito.Options)) (*cognito.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognito.ConfirmSignUpInput, optFns ...func(*cognito.Options)) (*cognito.ConfirmSignUpOutput, error)
	ForgotPassword(ctx context.Context, params *cognito.ForgotPasswordInput, optFns ...func(*cognito.Options)) (*cognito.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cognito.ConfirmForgotPasswordInput, optFns ...func(*cognito.Options)) (*cognito.ConfirmForgotPasswordOutput, error)
	ChangePassword(ctx context.Context, params *cognito.ChangePasswordInput, optFns ...func(*cognito.Options)) (*cognito.ChangePasswordOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cognito.ResendConfirmationCodeInput, optFns ...func(*cognito.Options)) (*cognito.ResendConfirmationCodeOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cognito.RespondToAuthChallengeInput, optFns ...func(*cognito.Options)) (*cognito.RespondToAuthChallengeOutput, error)
	DescribeUserPoolClient(ctx context.Context, params *cognito.DescribeUserPoolClientInput, optFns ...func(*cognito.Options)) (*cognito.DescribeUserPoolClientOutput, error)
}

// Client implements Service against a Cognito user pool.
type Client struct {
	api        API
	userPoolID string
	clientID   string
	now        func() time.Time
}

// New creates a Client for the given user pool and app client.
func New(api API, userPoolID string, clientID string) *Client {
	return &Client{
		api:        api,
		userPoolID: userPoolID,
		clientID:   clientID,
		now:        time.Now,
	}
}

// NewFromConfig creates a Client backed by a Cognito SDK client constructed
// from the given AWS configuration.
func NewFromConfig(cfg aws.Config, userPoolID string, clientID string, opts ...func(*cognito.Options)) *Client {
	return New(cognito.NewFromConfig(cfg, opts...), userPoolID, clientID)
}

// secretHash computes the SECRET_HASH parameter for a username. The app
// client secret is fetched from the pool on every call rather than cached, so
// a rotated secret takes effect immediately.
func (c *Client) secretHash(ctx context.Context, username string) (string, error) {
	response, err := c.api.DescribeUserPoolClient(ctx, &cognito.DescribeUserPoolClientInput{
		UserPoolId: aws.String(c.userPoolID),
		ClientId:   aws.String(c.clientID),
	})
	if err != nil {
		return "", classify("describing user pool client", err)
	}
	return ComputeSecretHash(username, c.clientID, aws.ToString(response.UserPoolClient.ClientSecret)), nil
}

// Login implements Service.
func (c *Client) Login(ctx context.Context, username string, password string) (AuthResult, error) {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	resp, err := c.api.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		ClientId: aws.String(c.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			paramUsername:   username,
			paramPassword:   password,
			paramSecretHash: secretHash,
		},
		ClientMetadata: map[string]string{
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		return AuthResult{}, classify("initiating auth", err)
	}
	return authResult(resp.AuthenticationResult, resp.ChallengeName, resp.ChallengeParameters, resp.Session, "", 0)
}

// RefreshTokens implements Service. The provider does not echo the refresh
// token back, so the request token is carried into the result alongside a
// refresh-ahead timestamp at 90% of the token lifetime.
func (c *Client) RefreshTokens(ctx context.Context, username string, refreshToken string) (AuthResult, error) {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	resp, err := c.api.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		ClientId: aws.String(c.clientID),
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		AuthParameters: map[string]string{
			paramRefreshToken: refreshToken,
			paramSecretHash:   secretHash,
		},
	})
	if err != nil {
		return AuthResult{}, classify("refreshing tokens", err)
	}
	return authResult(resp.AuthenticationResult, resp.ChallengeName, resp.ChallengeParameters, resp.Session, refreshToken, c.now().Unix())
}

// SignUp implements Service.
func (c *Client) SignUp(ctx context.Context, username string, password string, email string) error {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return err
	}
	emailAttr := []types.AttributeType{{Name: aws.String("email"), Value: aws.String(email)}}
	_, err = c.api.SignUp(ctx, &cognito.SignUpInput{
		ClientId:       aws.String(c.clientID),
		SecretHash:     aws.String(secretHash),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: emailAttr,
		ValidationData: emailAttr,
	})
	if err != nil {
		return classify("signing up", err)
	}
	return nil
}

// ConfirmSignUp implements Service.
func (c *Client) ConfirmSignUp(ctx context.Context, username string, confirmationCode string) error {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return err
	}
	_, err = c.api.ConfirmSignUp(ctx, &cognito.ConfirmSignUpInput{
		ClientId:           aws.String(c.clientID),
		SecretHash:         aws.String(secretHash),
		Username:           aws.String(username),
		ConfirmationCode:   aws.String(confirmationCode),
		ForceAliasCreation: false,
	})
	if err != nil {
		return classify("confirming sign up", err)
	}
	return nil
}

// ForgotPassword implements Service.
func (c *Client) ForgotPassword(ctx context.Context, username string) error {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return err
	}
	_, err = c.api.ForgotPassword(ctx, &cognito.ForgotPasswordInput{
		ClientId:   aws.String(c.clientID),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(username),
	})
	if err != nil {
		return classify("starting password reset", err)
	}
	return nil
}

// ConfirmForgotPassword implements Service.
func (c *Client) ConfirmForgotPassword(ctx context.Context, username string, confirmationCode string, password string) error {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return err
	}
	_, err = c.api.ConfirmForgotPassword(ctx, &cognito.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		SecretHash:       aws.String(secretHash),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(confirmationCode),
		Password:         aws.String(password),
	})
	if err != nil {
		return classify("confirming password reset", err)
	}
	return nil
}

// ChangePassword implements Service. The access token authenticates the
// caller, so no secret hash is required.
func (c *Client) ChangePassword(ctx context.Context, accessToken string, previousPassword string, proposedPassword string) error {
	_, err := c.api.ChangePassword(ctx, &cognito.ChangePasswordInput{
		AccessToken:      aws.String(accessToken),
		PreviousPassword: aws.String(previousPassword),
		ProposedPassword: aws.String(proposedPassword),
	})
	if err != nil {
		return classify("changing password", err)
	}
	return nil
}

// ResendConfirmationCode implements Service.
func (c *Client) ResendConfirmationCode(ctx context.Context, username string) error {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return err
	}
	_, err = c.api.ResendConfirmationCode(ctx, &cognito.ResendConfirmationCodeInput{
		ClientId:   aws.String(c.clientID),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(username),
	})
	if err != nil {
		return classify("resending confirmation code", err)
	}
	return nil
}

// RespondToAuthChallenge implements Service. The secret hash is injected into
// the challenge responses next to whatever the client supplied.
func (c *Client) RespondToAuthChallenge(ctx context.Context, username string, challengeName string, session string, responses map[string]string) (AuthResult, error) {
	secretHash, err := c.secretHash(ctx, username)
	if err != nil {
		return AuthResult{}, err
	}
	challengeResponses := make(map[string]string, len(responses)+1)
	for k, v := range responses {
		challengeResponses[k] = v
	}
	challengeResponses[paramSecretHash] = secretHash

	resp, err := c.api.RespondToAuthChallenge(ctx, &cognito.RespondToAuthChallengeInput{
		ClientId:           aws.String(c.clientID),
		ChallengeName:      types.ChallengeNameType(challengeName),
		Session:            aws.String(session),
		ChallengeResponses: challengeResponses,
	})
	if err != nil {
		return AuthResult{}, classify("responding to auth challenge", err)
	}
	return authResult(resp.AuthenticationResult, resp.ChallengeName, resp.ChallengeParameters, resp.Session, "", 0)
}

// authResult reshapes a provider auth response. When refreshToken is given it
// replaces the (absent) token in the result and nowUnix anchors the
// refresh-ahead hint.
func authResult(result *types.AuthenticationResultType, challengeName types.ChallengeNameType, challengeParameters map[string]string, session *string, refreshToken string, nowUnix int64) (AuthResult, error) {
	if result != nil {
		tokens := &Tokens{
			IDToken:      aws.ToString(result.IdToken),
			RefreshToken: aws.ToString(result.RefreshToken),
			AccessToken:  aws.ToString(result.AccessToken),
			ExpiresIn:    result.ExpiresIn,
			TokenType:    aws.ToString(result.TokenType),
		}
		if refreshToken != "" {
			tokens.RefreshToken = refreshToken
			tokens.RefreshAfter = nowUnix + int64(float64(result.ExpiresIn)*0.9)
		}
		return AuthResult{Tokens: tokens}, nil
	}
	if challengeName != "" {
		return AuthResult{Challenge: &Challenge{
			Name:       string(challengeName),
			Parameters: challengeParameters,
			Session:    aws.ToString(session),
		}}, nil
	}
	return AuthResult{}, ErrNoAuthResult
}

var _ Service = (*Client)(nil)
