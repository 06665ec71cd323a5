package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// LoadAWSConfig loads the shared AWS config, falling back to us-east-1 when AWS_REGION is unset.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1" // default fallback
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}

// endpointOverride returns AWS_ENDPOINT_OVERRIDE (e.g. LocalStack) or nil.
func endpointOverride() *string {
	if v := os.Getenv("AWS_ENDPOINT_OVERRIDE"); v != "" {
		return &v
	}
	return nil
}
