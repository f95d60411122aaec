// Package generation talks to the generative text-to-structured-data service.
package generation

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"alcyxob/flexplan/internal/metrics"
	"alcyxob/flexplan/internal/prompt"
)

// Generator sends one request and returns the raw text the service produced.
// Implementations fail with *GenerationError and never retry.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request) (string, error)
}

// Func adapts a plain function to Generator. Handy for tests and local stubs.
type Func func(ctx context.Context, req prompt.Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req prompt.Request) (string, error) {
	return f(ctx, req)
}

// instrumented records count, latency and outcome for every call of the wrapped Generator.
type instrumented struct {
	next    Generator
	metrics *metrics.Metrics
}

// Instrumented wraps next so each call shows up in m.
func Instrumented(next Generator, m *metrics.Metrics) Generator {
	return &instrumented{next: next, metrics: m}
}

func (g *instrumented) Generate(ctx context.Context, req prompt.Request) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, req)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = string(KindServiceFailure)
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			outcome = string(genErr.Kind)
		}
		log.Printf("WARN: Generation (%s) failed after %s: %v", req.Persona, elapsed.Round(time.Millisecond), err)
	} else if strings.TrimSpace(text) == "" {
		outcome = string(KindEmptyPayload)
	}
	g.metrics.ObserveGeneration(req.Persona, outcome, elapsed.Seconds())
	return text, err
}
