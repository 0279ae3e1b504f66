package provisioner

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-lambda-go/cfn"
	"go.uber.org/zap"
)

// Custom resource property names.
const (
	PropertyUserPoolID = "UserPoolId"
	PropertySubject    = "Subject"
)

// CustomResource handles CloudFormation custom resource events so the
// template is pushed whenever the stack that owns the pool is deployed.
// Delete is a no-op: the pool keeps its last template.
func (p *Provisioner) CustomResource(template string) cfn.CustomResourceFunction {
	return func(ctx context.Context, ev cfn.Event) (string, map[string]interface{}, error) {
		poolID, _ := ev.ResourceProperties[PropertyUserPoolID].(string)
		subject, _ := ev.ResourceProperties[PropertySubject].(string)

		physicalID := physicalResourceID(ev)

		p.logger.Info("custom resource event",
			zap.String("request_type", string(ev.RequestType)),
			zap.String("request_id", ev.RequestID),
			zap.String("user_pool_id", poolID),
		)

		switch ev.RequestType {
		case cfn.RequestCreate, cfn.RequestUpdate:
			result, err := p.Apply(ctx, Request{UserPoolID: poolID, Subject: subject, Template: template})
			if err != nil {
				return physicalID, nil, err
			}
			return physicalID, map[string]interface{}{
				"Message": "Email template updated successfully",
				"Applied": result.Applied,
			}, nil
		case cfn.RequestDelete:
			return physicalID, nil, nil
		default:
			return physicalID, nil, fmt.Errorf("unsupported request type %q", ev.RequestType)
		}
	}
}

// LazyCustomResource defers loading the template and building the client to
// the first Create or Update. A failure there is returned from the handler so
// cfn.LambdaWrap reports FAILED instead of the stack waiting on a timeout.
func LazyCustomResource(templatePath string, newClient func(context.Context) (CognitoAPI, error), logger *zap.Logger) cfn.CustomResourceFunction {
	var (
		mu    sync.Mutex
		inner cfn.CustomResourceFunction
	)
	return func(ctx context.Context, ev cfn.Event) (string, map[string]interface{}, error) {
		if ev.RequestType == cfn.RequestDelete {
			return physicalResourceID(ev), nil, nil
		}

		mu.Lock()
		if inner == nil {
			template, err := LoadTemplate(templatePath)
			if err != nil {
				mu.Unlock()
				logger.Error("invalid template", zap.String("path", templatePath), zap.Error(err))
				return physicalResourceID(ev), nil, err
			}
			client, err := newClient(ctx)
			if err != nil {
				mu.Unlock()
				logger.Error("failed to create Cognito client", zap.Error(err))
				return physicalResourceID(ev), nil, fmt.Errorf("failed to create Cognito client: %w", err)
			}
			inner = New(client, logger).CustomResource(template)
		}
		fn := inner
		mu.Unlock()

		return fn(ctx, ev)
	}
}

func physicalResourceID(ev cfn.Event) string {
	if ev.PhysicalResourceID != "" {
		return ev.PhysicalResourceID
	}
	poolID, _ := ev.ResourceProperties[PropertyUserPoolID].(string)
	return "verification-template-" + poolID
}
