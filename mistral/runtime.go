package mistral

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const contentTypeJSON = "application/json"

// Runtime is the part of the Bedrock runtime API the adapter calls.
type Runtime interface {
	// InvokeModel sends body to modelID and returns the raw reply body.
	InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error)

	// InvokeModelStream sends body to modelID and returns the event stream.
	InvokeModelStream(ctx context.Context, modelID string, body []byte) (EventStream, error)
}

// EventStream is a stream of response events.
// *bedrockruntime.InvokeModelWithResponseStreamEventStream satisfies it.
type EventStream interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

// bedrockRuntime calls Amazon Bedrock through the AWS SDK.
type bedrockRuntime struct {
	client *bedrockruntime.Client
}

// newBedrockRuntime builds a client from the default AWS credential chain.
func newBedrockRuntime(ctx context.Context, cfg *modelConfig) (*bedrockRuntime, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.region))
	}
	if cfg.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &bedrockRuntime{client: bedrockruntime.NewFromConfig(awsCfg)}, nil
}

func (r *bedrockRuntime) InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	out, err := r.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		Accept:      aws.String(contentTypeJSON),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (r *bedrockRuntime) InvokeModelStream(ctx context.Context, modelID string, body []byte) (EventStream, error) {
	out, err := r.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId: aws.String(modelID),
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	return out.GetStream(), nil
}
