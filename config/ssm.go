package config

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterSource resolves named secrets.
type ParameterSource interface {
	Get(ctx context.Context, name string) (string, error)
}

type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterStore reads decrypted values from AWS SSM Parameter Store.
type ParameterStore struct {
	client ssmAPI
}

// NewParameterStore builds a store from the default AWS credential chain.
func NewParameterStore(ctx context.Context) (*ParameterStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &ParameterStore{client: ssm.NewFromConfig(awsCfg)}, nil
}

func (s *ParameterStore) Get(ctx context.Context, name string) (string, error) {
	decrypt := true
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}
	return *out.Parameter.Value, nil
}

// ResolveSecrets replaces database and Binance credentials with the values of
// their configured parameters. Fields without a parameter name keep their value.
func (c *Config) ResolveSecrets(ctx context.Context, params ParameterSource) error {
	targets := []struct {
		param string
		dst   *string
	}{
		{c.Postgres.HostParam, &c.Postgres.Host},
		{c.Postgres.UserParam, &c.Postgres.User},
		{c.Postgres.PasswordParam, &c.Postgres.Password},
		{c.Binance.Credentials.PublicKeyParam, &c.Binance.Credentials.PublicKey},
		{c.Binance.Credentials.SecretKeyParam, &c.Binance.Credentials.SecretKey},
	}
	for _, t := range targets {
		if t.param == "" {
			continue
		}
		v, err := params.Get(ctx, t.param)
		if err != nil {
			return err
		}
		*t.dst = v
	}
	return nil
}
