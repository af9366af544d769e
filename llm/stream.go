package llm

import (
	"fmt"
	"iter"

	"github.com/i2y/llm-bedrock-mistral/provider"
)

// Stream represents a streaming response from a model.
// It can be iterated once.
type Stream struct {
	seq  iter.Seq2[string, error]
	resp *Response
	conv *provider.Conversation

	started bool
	done    bool
	err     error
}

// Chunks returns an iterator over the response fragments.
// This uses Go 1.23+ range-over-func. Fragments are fetched as the loop
// asks for them; breaking out of the loop abandons the rest.
//
// Example:
//
//	for chunk := range stream.Chunks() {
//	    fmt.Print(chunk)
//	}
func (s *Stream) Chunks() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.started {
			if s.err == nil && !s.done {
				s.err = ErrStreamConsumed
			}
			return
		}
		s.started = true

		for fragment, err := range s.seq {
			if err != nil {
				s.err = fmt.Errorf("streaming model: %w", err)
				return
			}
			s.resp.Append(fragment)
			if !yield(fragment) {
				return
			}
		}

		s.done = true
		if s.conv != nil {
			s.conv.Append(s.resp)
		}
	}
}

// Err returns any error that occurred during streaming.
func (s *Stream) Err() error {
	return s.err
}

// Done reports whether the stream was consumed to the end without error.
func (s *Stream) Done() bool {
	return s.done
}

// Response returns the response accumulated so far.
func (s *Stream) Response() *Response {
	return s.resp
}

// Text returns the accumulated text. A stream that was never iterated
// is consumed first.
func (s *Stream) Text() (string, error) {
	if !s.started {
		for range s.Chunks() {
		}
	}
	return s.resp.Text(), s.err
}
