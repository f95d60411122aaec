package generation

import (
	"context"
	"testing"

	"alcyxob/flexplan/internal/metrics"
	"alcyxob/flexplan/internal/prompt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented_RecordsOutcomes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	responses := []struct {
		text string
		err  error
	}{
		{`{"ok":true}`, nil},
		{"", newError(prompt.PersonaModifier, KindUnreachable, context.DeadlineExceeded)},
		{"   ", nil},
	}
	i := 0
	gen := Instrumented(Func(func(context.Context, prompt.Request) (string, error) {
		r := responses[i]
		i++
		return r.text, r.err
	}), m)
	req := prompt.Request{Persona: prompt.PersonaModifier}

	text, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	_, err = gen.Generate(context.Background(), req)
	assert.True(t, IsGenerationError(err))

	_, err = gen.Generate(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationRequests.WithLabelValues("modifier", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationRequests.WithLabelValues("modifier", "unreachable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationRequests.WithLabelValues("modifier", "empty_payload")))
}

func TestGenerationError_Message(t *testing.T) {
	err := newError(prompt.PersonaCoach, KindEmptyPayload, ErrNoResponse)
	assert.Equal(t, "generation (coach) failed: empty_payload: no response from model", err.Error())
	assert.ErrorIs(t, err, ErrNoResponse)
}
