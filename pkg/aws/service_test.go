package aws

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/require"
)

func fullConfig() Config {
	return Config{
		UserPoolID:            "eu-west-1_testpool",
		ClientID:              "1example23456789",
		UserPoolAccessRoleARN: "arn:aws:iam::123456789012:role/user-pool-access",
		TableName:             "scrapmap",
		ReadRoleARN:           "arn:aws:iam::123456789012:role/table-read",
		WriteRoleARN:          "arn:aws:iam::123456789012:role/table-write",
	}
}

func TestCheckConfigReportsEachMissingValue(t *testing.T) {
	testCases := []struct {
		name    string
		drop    func(*Config)
		check   func(*Service) error
		missing string
	}{
		{"identity without client id", func(c *Config) { c.ClientID = "" }, (*Service).CheckConfig, EnvClientID},
		{"identity without pool id", func(c *Config) { c.UserPoolID = "" }, (*Service).CheckConfig, EnvUserPoolID},
		{"identity without role", func(c *Config) { c.UserPoolAccessRoleARN = "" }, (*Service).CheckConfig, EnvUserPoolAccessRoleARN},
		{"read without table", func(c *Config) { c.TableName = "" }, (*Service).CheckReadConfig, EnvTableName},
		{"read without role", func(c *Config) { c.ReadRoleARN = "" }, (*Service).CheckReadConfig, EnvReadRoleARN},
		{"write without table", func(c *Config) { c.TableName = "" }, (*Service).CheckWriteConfig, EnvTableName},
		{"write without role", func(c *Config) { c.WriteRoleARN = "" }, (*Service).CheckWriteConfig, EnvWriteRoleARN},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := fullConfig()
			tc.drop(&cfg)
			svc := &Service{cfg: cfg, sts: &mockSTS{}}

			err := tc.check(svc)
			var confErr *ConfigError
			require.ErrorAs(t, err, &confErr)
			require.Equal(t, tc.missing, confErr.Name)
		})
	}
}

func TestCheckConfigComplete(t *testing.T) {
	svc := &Service{cfg: fullConfig(), sts: &mockSTS{}}
	require.NoError(t, svc.CheckConfig())
	require.NoError(t, svc.CheckReadConfig())
	require.NoError(t, svc.CheckWriteConfig())
}

func TestIdentityAbortsBeforeNetworkOnMissingConfig(t *testing.T) {
	cfg := fullConfig()
	cfg.UserPoolID = ""
	mock := &mockSTS{}
	svc := &Service{cfg: cfg, sts: mock}

	_, err := svc.Identity(context.Background())
	var confErr *ConfigError
	require.ErrorAs(t, err, &confErr)
	require.Zero(t, mock.AssumeRoleCalls)
}

func TestReaderWriterAbortBeforeNetworkOnMissingConfig(t *testing.T) {
	cfg := fullConfig()
	cfg.TableName = ""
	mock := &mockSTS{}
	svc := &Service{cfg: cfg, sts: mock}

	_, err := svc.Reader(context.Background(), SessionListDestinations)
	require.Error(t, err)
	_, err = svc.Writer(context.Background(), SessionCreatePlace)
	require.Error(t, err)
	require.Zero(t, mock.AssumeRoleCalls)
}

func TestIdentityAssumesUserPoolRole(t *testing.T) {
	mock := &mockSTS{}
	mock.AssumeRoleFunc = func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
		require.Equal(t, "arn:aws:iam::123456789012:role/user-pool-access", aws.ToString(params.RoleArn))
		require.Equal(t, SessionUserPoolAccess, aws.ToString(params.RoleSessionName))
		return stubCredentials(time.Now().Add(time.Hour)), nil
	}
	svc := &Service{cfg: fullConfig(), sts: mock}

	ids, err := svc.Identity(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ids)
	require.Equal(t, 1, mock.AssumeRoleCalls)
}

func TestStoresAssumeFreshCredentialsPerCall(t *testing.T) {
	var sessions []string
	var roles []string
	mock := &mockSTS{}
	mock.AssumeRoleFunc = func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
		roles = append(roles, aws.ToString(params.RoleArn))
		sessions = append(sessions, aws.ToString(params.RoleSessionName))
		return stubCredentials(time.Now().Add(time.Hour)), nil
	}
	svc := &Service{cfg: fullConfig(), sts: mock}

	_, err := svc.Reader(context.Background(), SessionListDestinations)
	require.NoError(t, err)
	_, err = svc.Writer(context.Background(), SessionDeletePlace)
	require.NoError(t, err)
	_, err = svc.Writer(context.Background(), SessionCreatePlace)
	require.NoError(t, err)

	require.Equal(t, 3, mock.AssumeRoleCalls)
	require.Equal(t, []string{
		"arn:aws:iam::123456789012:role/table-read",
		"arn:aws:iam::123456789012:role/table-write",
		"arn:aws:iam::123456789012:role/table-write",
	}, roles)
	require.Equal(t, []string{SessionListDestinations, SessionDeletePlace, SessionCreatePlace}, sessions)
}
