// Package controller provides the ordered step pipeline every relay runs an
// inbound message through: permission checks, payload validation, then the
// action handler, halting on the first failure.
package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cardhub/internal/protocol"
)

// Request threads one inbound message through a pipeline. Steps accumulate
// onto it; the handler step fills Response.
type Request struct {
	Env      protocol.Envelope
	SenderID string
	Response *protocol.Response
}

// Step inspects or mutates the request. A non-nil error halts the pipeline.
type Step func(ctx context.Context, req *Request) error

type Pipeline struct {
	name  string
	steps []Step
	log   zerolog.Logger
}

func NewPipeline(name string, log zerolog.Logger, steps ...Step) *Pipeline {
	return &Pipeline{name: name, steps: steps, log: log}
}

// Run executes the steps strictly in order and returns an explicit outcome:
// the handler's response, or the first error. A panicking step is reported as
// an error rather than taking the process down.
func (p *Pipeline) Run(ctx context.Context, req *Request) (resp *protocol.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("pipeline", p.name).Interface("panic", r).Msg("pipeline step panicked")
			resp = nil
			err = fmt.Errorf("%s: %v", p.name, r)
		}
	}()
	for _, step := range p.steps {
		if err := step(ctx, req); err != nil {
			p.log.Debug().Str("pipeline", p.name).Err(err).Msg("pipeline halted")
			return nil, err
		}
	}
	return req.Response, nil
}
