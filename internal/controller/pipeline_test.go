package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"cardhub/internal/protocol"
)

func TestPipelineShortCircuitsOnError(t *testing.T) {
	var ran []string
	step := func(name string, err error) Step {
		return func(ctx context.Context, req *Request) error {
			ran = append(ran, name)
			return err
		}
	}
	p := NewPipeline("test", zerolog.Nop(),
		step("A", nil),
		step("B", errors.New("x")),
		step("C", nil),
	)
	resp, err := p.Run(context.Background(), &Request{})
	if err == nil || err.Error() != "x" {
		t.Fatalf("err = %v, want x", err)
	}
	if resp != nil {
		t.Fatalf("resp = %+v, want nil on error", resp)
	}
	if len(ran) != 2 || ran[0] != "A" || ran[1] != "B" {
		t.Fatalf("ran %v, want [A B]", ran)
	}
}

func TestPipelineReturnsHandlerResponse(t *testing.T) {
	p := NewPipeline("test", zerolog.Nop(),
		func(ctx context.Context, req *Request) error {
			req.Response = &protocol.Response{Payload: protocol.Payload{Type: protocol.TypeLobby}, Broadcast: true}
			return nil
		},
	)
	resp, err := p.Run(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resp == nil || !resp.Broadcast || resp.Payload.Type != protocol.TypeLobby {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPipelineRecoversPanic(t *testing.T) {
	p := NewPipeline("test", zerolog.Nop(),
		func(ctx context.Context, req *Request) error { panic("boom") },
	)
	resp, err := p.Run(context.Background(), &Request{})
	if err == nil {
		t.Fatal("expected error from panicking step")
	}
	if resp != nil {
		t.Fatalf("resp = %+v, want nil", resp)
	}
}
