package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/scrapmap/scrapmap/pkg/identity"
	"github.com/scrapmap/scrapmap/pkg/store/travelstore"
)

// Environment variable names for required configuration values.
const (
	EnvUserPoolID            = "USER_POOL_ID"
	EnvClientID              = "CLIENT_ID"
	EnvUserPoolAccessRoleARN = "USER_POOL_ACCESS_ROLE_ARN"
	EnvTableName             = "DYNAMO_TABLE_NAME"
	EnvReadRoleARN           = "DYNAMO_READ_ROLE_ARN"
	EnvWriteRoleARN          = "DYNAMO_WRITE_ROLE_ARN"
)

// Role session names recorded in the credential issuer's audit trail.
const (
	SessionUserPoolAccess    = "GET_USER_POOL_INFO"
	SessionListDestinations  = "GET_DESTINATIONS_FOR_USER"
	SessionCreateDestination = "CREATE_NEW_DESTINATION"
	SessionDeletePlace       = "DELETE_PLACE"
	SessionCreatePlace       = "CREATE_NEW_PLACE"
)

// ConfigError reports a required configuration value that is absent from the
// environment. Operations abort on it before touching any network.
type ConfigError struct {
	Name string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration value: %s", e.Name)
}

// Config carries everything the service reads from its environment. It is
// constructed once at cold start and passed by reference; per-operation key
// presence is checked by the Service Check* methods.
type Config struct {
	Config                aws.Config
	STSOptions            []func(*sts.Options)
	CognitoOptions        []func(*cognito.Options)
	DynamoOptions         []func(*dynamodb.Options)
	SentryDSN             string
	SentryEnvironment     string
	UserPoolID            string
	ClientID              string
	UserPoolAccessRoleARN string
	TableName             string
	ReadRoleARN           string
	WriteRoleARN          string
}

// FromEnv constructs the service configuration from the environment.
func FromEnv(ctx context.Context) (Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("loading aws default config: %w", err)
	}
	return Config{
		Config:                awsConfig,
		SentryDSN:             os.Getenv("SENTRY_DSN"),
		SentryEnvironment:     os.Getenv("SENTRY_ENVIRONMENT"),
		UserPoolID:            os.Getenv(EnvUserPoolID),
		ClientID:              os.Getenv(EnvClientID),
		UserPoolAccessRoleARN: os.Getenv(EnvUserPoolAccessRoleARN),
		TableName:             os.Getenv(EnvTableName),
		ReadRoleARN:           os.Getenv(EnvReadRoleARN),
		WriteRoleARN:          os.Getenv(EnvWriteRoleARN),
	}, nil
}

// Service builds role-scoped clients for the identity provider and the travel
// table. A fresh credential is acquired on every call; nothing is cached
// across invocations.
type Service struct {
	cfg Config
	sts stsAPI
}

// Construct creates the Service from a Config.
func Construct(cfg Config) *Service {
	return &Service{
		cfg: cfg,
		sts: sts.NewFromConfig(cfg.Config, cfg.STSOptions...),
	}
}

// CheckConfig reports the first missing configuration value required by
// identity operations.
func (s *Service) CheckConfig() error {
	return checkPresent(
		configValue{EnvClientID, s.cfg.ClientID},
		configValue{EnvUserPoolAccessRoleARN, s.cfg.UserPoolAccessRoleARN},
		configValue{EnvUserPoolID, s.cfg.UserPoolID},
	)
}

// CheckReadConfig reports the first missing configuration value required by
// table reads.
func (s *Service) CheckReadConfig() error {
	return checkPresent(
		configValue{EnvReadRoleARN, s.cfg.ReadRoleARN},
		configValue{EnvTableName, s.cfg.TableName},
	)
}

// CheckWriteConfig reports the first missing configuration value required by
// table writes.
func (s *Service) CheckWriteConfig() error {
	return checkPresent(
		configValue{EnvWriteRoleARN, s.cfg.WriteRoleARN},
		configValue{EnvTableName, s.cfg.TableName},
	)
}

type configValue struct {
	name  string
	value string
}

func checkPresent(values ...configValue) error {
	for _, v := range values {
		if v.value == "" {
			return &ConfigError{Name: v.name}
		}
	}
	return nil
}

// Identity acquires a user-pool-scoped credential and returns an identity
// service client valid for the current invocation.
func (s *Service) Identity(ctx context.Context) (identity.Service, error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}
	creds, err := assumeRole(ctx, s.sts, s.cfg.UserPoolAccessRoleARN, SessionUserPoolAccess)
	if err != nil {
		return nil, err
	}
	opts := append([]func(*cognito.Options){func(o *cognito.Options) {
		o.Credentials = creds.Provider()
	}}, s.cfg.CognitoOptions...)
	return identity.NewFromConfig(s.cfg.Config, s.cfg.UserPoolID, s.cfg.ClientID, opts...), nil
}

// Reader acquires a read-role credential and returns a store scoped to it.
func (s *Service) Reader(ctx context.Context, roleSession string) (travelstore.Store, error) {
	if err := s.CheckReadConfig(); err != nil {
		return nil, err
	}
	return s.store(ctx, s.cfg.ReadRoleARN, roleSession)
}

// Writer acquires a write-role credential and returns a store scoped to it.
func (s *Service) Writer(ctx context.Context, roleSession string) (travelstore.Store, error) {
	if err := s.CheckWriteConfig(); err != nil {
		return nil, err
	}
	return s.store(ctx, s.cfg.WriteRoleARN, roleSession)
}

func (s *Service) store(ctx context.Context, roleARN string, roleSession string) (travelstore.Store, error) {
	creds, err := assumeRole(ctx, s.sts, roleARN, roleSession)
	if err != nil {
		return nil, err
	}
	opts := append([]func(*dynamodb.Options){func(o *dynamodb.Options) {
		o.Credentials = creds.Provider()
	}}, s.cfg.DynamoOptions...)
	return NewDynamoTravelStore(s.cfg.Config, s.cfg.TableName, opts...), nil
}
