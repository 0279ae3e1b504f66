// Package main is the AWS Lambda entrypoint. One function serves every hook:
// events are routed by triggerSource unless LAMBDA_HOOK pins a hook.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/app"
	"github.com/wiseuni/identity-hooks/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := config.MustNewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize hooks", zap.Error(err))
	}
	defer func() { _ = application.Close() }()

	logger.Info("starting lambda handler", zap.String("hook", cfg.LambdaHook))
	lambda.Start(newHandler(application.Dispatcher, cfg.LambdaHook))
}
