package aws

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/pkg/errors"
)

const defaultRegion = "us-east-1"

// Settings selects the region and an optional endpoint override (LocalStack).
type Settings struct {
	Region           string `json:"region" yaml:"region"`
	EndpointOverride string `json:"endpointOverride" yaml:"endpointOverride"`
}

// LoadAWSConfig loads the default credential chain for the configured region.
func LoadAWSConfig(ctx context.Context, s Settings) (sdkaws.Config, error) {
	region := s.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if s.EndpointOverride != "" {
		opts = append(opts, config.WithBaseEndpoint(s.EndpointOverride))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to load AWS config")
	}

	return cfg, nil
}
