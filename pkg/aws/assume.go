package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type stsAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Credentials is a short-lived credential scoped to an assumed role. It is
// produced fresh per invocation and never cached or reused across requests.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expires         time.Time
}

// Provider returns a static credentials provider suitable for constructing a
// client for exactly one downstream service.
func (c Credentials) Provider() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}

// assumeRole exchanges the caller identity for a credential scoped to the
// given role. The session name ends up in the provider's audit trail. No
// retry is attempted: an assumption failure fails the caller's request.
func assumeRole(ctx context.Context, api stsAPI, roleARN string, sessionName string) (Credentials, error) {
	out, err := api.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("assuming role %s: %w", roleARN, err)
	}
	if out.Credentials == nil {
		return Credentials{}, fmt.Errorf("assuming role %s: empty credentials in response", roleARN)
	}
	return Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Expires:         aws.ToTime(out.Credentials.Expiration),
	}, nil
}
