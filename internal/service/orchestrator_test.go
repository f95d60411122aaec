package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/flexplan/internal/domain"
	"alcyxob/flexplan/internal/generation"
	"alcyxob/flexplan/internal/plan"
	"alcyxob/flexplan/internal/prompt"
	"alcyxob/flexplan/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gated blocks every call until release is closed, then answers with text.
type gated struct {
	text    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGated(text string) *gated {
	return &gated{text: text, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gated) Generate(ctx context.Context, _ prompt.Request) (string, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return g.text, nil
	case <-ctx.Done():
		return "", &generation.GenerationError{Kind: generation.KindUnreachable, Err: ctx.Err()}
	}
}

func newOrchestrator(gen generation.Generator) *service.Orchestrator {
	return service.NewOrchestrator(service.NewPlanService(gen, nil))
}

func TestOrchestrator_CreateThenRevise(t *testing.T) {
	first := samplePlan("First", "Squat")
	second := samplePlan("Second", "Squat", "Lunge")
	texts := []string{planJSON(t, first), planJSON(t, second)}
	var seen []prompt.Request
	o := newOrchestrator(generation.Func(func(_ context.Context, req prompt.Request) (string, error) {
		seen = append(seen, req)
		text := texts[0]
		texts = texts[1:]
		return text, nil
	}))

	assert.Equal(t, service.StateIdle, o.State())
	assert.False(t, o.HasPlan())

	got, err := o.Create(context.Background(), domain.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = o.SubmitRevision(context.Background(), "add lunges")
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, second, o.Current())
	assert.Equal(t, service.StateIdle, o.State())

	raw, err := plan.Marshal(first)
	require.NoError(t, err)
	assert.Contains(t, seen[1].Instruction, string(raw))
}

func TestOrchestrator_ReviseWithoutPlan(t *testing.T) {
	o := newOrchestrator(fixed("unused", nil))

	_, err := o.SubmitRevision(context.Background(), "harder")

	assert.ErrorIs(t, err, service.ErrNoCurrentPlan)
	assert.Equal(t, service.StateIdle, o.State())
}

func TestOrchestrator_FailedRevisionKeepsCurrentPlan(t *testing.T) {
	base := samplePlan("Base", "Squat")
	texts := []string{planJSON(t, base), "{not json", ""}
	o := newOrchestrator(generation.Func(func(context.Context, prompt.Request) (string, error) {
		text := texts[0]
		texts = texts[1:]
		return text, nil
	}))
	_, err := o.Create(context.Background(), domain.DefaultPreferences())
	require.NoError(t, err)

	_, err = o.SubmitRevision(context.Background(), "harder")
	assert.True(t, plan.IsMalformedPlan(err))
	assert.Equal(t, base, o.Current())

	_, err = o.SubmitRevision(context.Background(), "harder")
	assert.True(t, generation.IsGenerationError(err))
	assert.Equal(t, base, o.Current())
	assert.Equal(t, service.StateIdle, o.State())
}

func TestOrchestrator_RejectsConcurrentOperations(t *testing.T) {
	g := newGated(planJSON(t, samplePlan("Slow", "Squat")))
	o := newOrchestrator(g)

	done := make(chan error, 1)
	go func() {
		_, err := o.Create(context.Background(), domain.DefaultPreferences())
		done <- err
	}()
	<-g.started
	assert.Equal(t, service.StatePending, o.State())

	_, err := o.Create(context.Background(), domain.DefaultPreferences())
	assert.ErrorIs(t, err, service.ErrOperationInFlight)
	_, err = o.Import(context.Background(), "Squat 5x5")
	assert.ErrorIs(t, err, service.ErrOperationInFlight)

	close(g.release)
	require.NoError(t, <-done)
	assert.Equal(t, service.StateIdle, o.State())
	assert.Equal(t, "Slow", o.Current().Title)
}

func TestOrchestrator_DiscardsResultAfterReset(t *testing.T) {
	g := newGated(planJSON(t, samplePlan("Late", "Squat")))
	o := newOrchestrator(g)

	done := make(chan error, 1)
	go func() {
		_, err := o.Import(context.Background(), "Squat 5x5")
		done <- err
	}()
	<-g.started
	o.Reset()
	close(g.release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, service.ErrStaleResult)
	case <-time.After(5 * time.Second):
		t.Fatal("import did not finish")
	}
	assert.Nil(t, o.Current())
	assert.Equal(t, service.StateIdle, o.State())
}

func TestOrchestrator_ResetAllowsNewOperationWhileOldOneRuns(t *testing.T) {
	abandoned := newGated(planJSON(t, samplePlan("Abandoned", "Squat")))
	fresh := planJSON(t, samplePlan("Fresh", "Lunge"))
	calls := 0
	var mu sync.Mutex
	o := newOrchestrator(generation.Func(func(ctx context.Context, req prompt.Request) (string, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			return abandoned.Generate(ctx, req)
		}
		return fresh, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := o.Import(context.Background(), "Squat 5x5")
		done <- err
	}()
	<-abandoned.started
	o.Reset()
	assert.Equal(t, service.StateIdle, o.State())

	got, err := o.Create(context.Background(), domain.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, "Fresh", got.Title)

	close(abandoned.release)
	assert.ErrorIs(t, <-done, service.ErrStaleResult)
	assert.Equal(t, "Fresh", o.Current().Title)
	assert.Equal(t, service.StateIdle, o.State())
}

func TestOrchestrator_StaleCompletionDoesNotReleaseNewerOperation(t *testing.T) {
	abandoned := newGated(planJSON(t, samplePlan("Abandoned", "Squat")))
	newer := newGated(planJSON(t, samplePlan("Newer", "Lunge")))
	calls := 0
	var mu sync.Mutex
	o := newOrchestrator(generation.Func(func(ctx context.Context, req prompt.Request) (string, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			return abandoned.Generate(ctx, req)
		}
		return newer.Generate(ctx, req)
	}))

	oldDone := make(chan error, 1)
	go func() {
		_, err := o.Import(context.Background(), "Squat 5x5")
		oldDone <- err
	}()
	<-abandoned.started
	o.Reset()

	newDone := make(chan error, 1)
	go func() {
		_, err := o.Create(context.Background(), domain.DefaultPreferences())
		newDone <- err
	}()
	<-newer.started

	close(abandoned.release)
	assert.ErrorIs(t, <-oldDone, service.ErrStaleResult)
	assert.Equal(t, service.StatePending, o.State())
	_, err := o.SubmitRevision(context.Background(), "harder")
	assert.ErrorIs(t, err, service.ErrOperationInFlight)

	close(newer.release)
	require.NoError(t, <-newDone)
	assert.Equal(t, "Newer", o.Current().Title)
}

func TestOrchestrator_CancelledContextSurfacesGenerationError(t *testing.T) {
	g := newGated("unused")
	o := newOrchestrator(g)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := o.Create(ctx, domain.DefaultPreferences())
		done <- err
	}()
	<-g.started
	cancel()

	err := <-done
	assert.True(t, generation.IsGenerationError(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, o.HasPlan())
}

func TestOrchestrator_CurrentReturnsCopy(t *testing.T) {
	o := newOrchestrator(fixed(planJSON(t, samplePlan("Mine", "Squat")), nil))
	_, err := o.Create(context.Background(), domain.DefaultPreferences())
	require.NoError(t, err)

	c := o.Current()
	c.Title = "changed"
	c.Exercises[0].Name = "changed"

	assert.Equal(t, "Mine", o.Current().Title)
	assert.Equal(t, "Squat", o.Current().Exercises[0].Name)
}
