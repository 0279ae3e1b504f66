// Package main is a CloudFormation custom resource Lambda that pushes the
// verification template into the user pool named by the resource's
// UserPoolId property.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/provisioner"
)

func newCognitoClient(ctx context.Context) (provisioner.CognitoAPI, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cip.NewFromConfig(awsCfg), nil
}

func main() {
	logger := config.MustNewLogger(&config.Config{
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	})
	defer func() { _ = logger.Sync() }()

	// Template and AWS config errors surface as FAILED responses.
	lambda.Start(cfn.LambdaWrap(
		provisioner.LazyCustomResource(os.Getenv("TEMPLATE_PATH"), newCognitoClient, logger),
	))
}
