// Package llm provides the main API for prompting registered models.
package llm

import (
	"context"
	"fmt"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

// Response is an alias for provider.Response for convenience.
type Response = provider.Response

// Call prompts a model and waits for the full response.
//
// Example:
//
//	resp, err := llm.Call(ctx, "Recommend a fantasy book",
//	    llm.WithModel("bmi"),
//	    llm.WithTemperature(0.2),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Text())
func Call(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	cfg := newCallConfig()
	cfg.apply(opts...)

	m, p, err := cfg.prepare(prompt)
	if err != nil {
		return nil, err
	}

	resp := provider.NewResponse(m.ModelID(), p)
	for fragment, err := range m.Execute(ctx, p, false, resp, cfg.conversation) {
		if err != nil {
			return nil, fmt.Errorf("calling model: %w", err)
		}
		resp.Append(fragment)
	}

	if cfg.conversation != nil {
		cfg.conversation.Append(resp)
	}

	return resp, nil
}

// CallStream prompts a model and streams the response.
// The remote call starts when the stream is first iterated.
//
// Example:
//
//	stream, err := llm.CallStream(ctx, "Write a short story",
//	    llm.WithModel("bedrock-mistral-8x7b"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	for chunk := range stream.Chunks() {
//	    fmt.Print(chunk)
//	}
//
//	if err := stream.Err(); err != nil {
//	    return err
//	}
func CallStream(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	cfg := newCallConfig()
	cfg.apply(opts...)

	m, p, err := cfg.prepare(prompt)
	if err != nil {
		return nil, err
	}

	if !m.CanStream() {
		return nil, fmt.Errorf("%s: %w", m.ModelID(), ErrStreamingUnsupported)
	}

	resp := provider.NewResponse(m.ModelID(), p)
	return &Stream{
		seq:  m.Execute(ctx, p, true, resp, cfg.conversation),
		resp: resp,
		conv: cfg.conversation,
	}, nil
}
