// Package main pushes the email verification template into a Cognito user
// pool.
//
//	provision-template -user-pool-id eu-west-2_abc [-template verification.html] [-subject "..."] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/provisioner"
)

func main() {
	poolID := flag.String("user-pool-id", os.Getenv("USER_POOL_ID"), "Cognito user pool ID")
	templatePath := flag.String("template", "", "HTML template file (default: built-in template)")
	subject := flag.String("subject", provisioner.DefaultSubject, "verification email subject")
	region := flag.String("region", "", "AWS region (default: from the AWS config chain)")
	dryRun := flag.Bool("dry-run", false, "validate and report without updating the pool")
	flag.Parse()

	if *poolID == "" {
		fmt.Fprintln(os.Stderr, "-user-pool-id is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := config.MustNewLogger(&config.Config{
		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: "console",
	})

	err := run(logger, *region, provisioner.Request{
		UserPoolID: *poolID,
		Subject:    *subject,
		DryRun:     *dryRun,
	}, *templatePath)
	if err != nil {
		logger.Error("failed to provision template", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *zap.Logger, region string, req provisioner.Request, templatePath string) error {
	template, err := provisioner.LoadTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	req.Template = template

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	result, err := provisioner.New(cip.NewFromConfig(awsCfg), logger).Apply(ctx, req)
	if err != nil {
		return err
	}

	switch {
	case result.Applied:
		fmt.Printf("updated %s (%s)\n", result.UserPoolID, result.PoolName)
	case !result.Changed():
		fmt.Printf("%s (%s) already up to date\n", result.UserPoolID, result.PoolName)
	default:
		fmt.Printf("dry run: %s (%s) would change subject=%t message=%t\n",
			result.UserPoolID, result.PoolName, result.SubjectChanged, result.MessageChanged)
	}
	return nil
}
