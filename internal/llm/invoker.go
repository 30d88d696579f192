// ABOUTME: Invoker tries completion backends in deterministic fallback order
// ABOUTME: Supports direct-completion and polled asynchronous-run backend shapes
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/safetalk/safetalk/internal/models"
)

// RunHandle identifies an in-flight asynchronous completion run
type RunHandle string

// RunStatus is the reported state of an asynchronous run
type RunStatus string

// StatusCompleted is the only successful terminal status. Any other status
// outside the non-terminal set fails the attempt.
const StatusCompleted RunStatus = "completed"

// nonTerminalStatuses keep the poll loop going
var nonTerminalStatuses = map[RunStatus]bool{
	"queued":          true,
	"in_progress":     true,
	"requires_action": true,
}

// Terminal reports whether the status ends a run
func (s RunStatus) Terminal() bool {
	return !nonTerminalStatuses[s]
}

// RunState is one poll observation of an asynchronous run
type RunState struct {
	Status RunStatus
	Text   string // populated when Status is completed
}

// Backend is a configured completion backend. Concrete backends implement
// exactly one of SyncBackend or AsyncBackend.
type Backend interface {
	Descriptor() models.BackendDescriptor
}

// SyncBackend completes in a single call
type SyncBackend interface {
	Backend
	Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (string, error)
}

// AsyncBackend starts a server-side run that must be polled. ReleaseRun
// frees any server-side resources for the run; it is best-effort and always
// called after an attempt, whatever the outcome.
type AsyncBackend interface {
	Backend
	StartRun(ctx context.Context, messages []models.Message) (RunHandle, error)
	PollRun(ctx context.Context, handle RunHandle) (RunState, error)
	ReleaseRun(handle RunHandle)
}

// ExhaustedError reports that every candidate backend failed. Failures holds
// one recorded entry per attempted backend, in attempt order.
type ExhaustedError struct {
	Failures []models.AttemptFailure
}

func (e *ExhaustedError) Error() string {
	if len(e.Failures) == 0 {
		return "no completion backends available"
	}
	last := e.Failures[len(e.Failures)-1]
	return fmt.Sprintf("all %d completion backends failed, last (%s): %v", len(e.Failures), last.Backend, last.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Cause
}

// PollConfig bounds the asynchronous-run poll loop. The short interval is
// used for an initial burst, the long interval afterwards, and MaxCount is a
// hard ceiling after which the attempt is a timeout failure.
type PollConfig struct {
	FastInterval time.Duration
	SlowInterval time.Duration
	FastCount    int
	MaxCount     int
}

// DefaultPollConfig mirrors the source deployment: 50ms for the first 40
// polls (20 checks/second for two seconds), 200ms after, ceiling 600.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		FastInterval: 50 * time.Millisecond,
		SlowInterval: 200 * time.Millisecond,
		FastCount:    40,
		MaxCount:     600,
	}
}

// Invoker attempts an ordered list of completion backends and returns the
// first success. Attempts are strictly sequential: backend calls are neither
// idempotent nor free, so concurrent racing is rejected by design.
type Invoker struct {
	backends []Backend
	poll     PollConfig
}

// NewInvoker creates an Invoker over the configured backends. The first
// backend is the default primary; list order defines the fallback sequence.
func NewInvoker(backends []Backend, poll PollConfig) *Invoker {
	return &Invoker{backends: backends, poll: poll}
}

// Backends returns the configured backend descriptors in fallback order
func (inv *Invoker) Backends() []models.BackendDescriptor {
	descs := make([]models.BackendDescriptor, len(inv.backends))
	for i, b := range inv.backends {
		descs[i] = b.Descriptor()
	}
	return descs
}

// Complete tries candidates in order and returns the first successful
// outcome. If preferred names a configured backend it is tried first, then
// the primary, then the rest in configured order; no backend is tried twice.
// When every candidate fails the returned error is an *ExhaustedError
// carrying all recorded failures.
func (inv *Invoker) Complete(ctx context.Context, conversation []models.Message, preferred string) (*models.CompletionOutcome, error) {
	candidates := inv.orderCandidates(preferred)

	var failures []models.AttemptFailure
	for _, backend := range candidates {
		name := backend.Descriptor().Name

		text, err := inv.attempt(ctx, backend, conversation)
		if err == nil {
			return &models.CompletionOutcome{
				Text:        text,
				BackendUsed: name,
				Failures:    failures,
			}, nil
		}

		log.Printf("[Invoker] backend %s failed: %v", name, err)
		failures = append(failures, models.AttemptFailure{Backend: name, Cause: err, At: time.Now()})

		// Caller cancellation is not a per-backend fault; stop trying.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, &ExhaustedError{Failures: failures}
}

// orderCandidates builds the attempt order: preferred, primary, then the
// remaining backends in configured order
func (inv *Invoker) orderCandidates(preferred string) []Backend {
	var ordered []Backend
	tried := make(map[string]bool)

	add := func(b Backend) {
		name := b.Descriptor().Name
		if !tried[name] {
			tried[name] = true
			ordered = append(ordered, b)
		}
	}

	if preferred != "" {
		for _, b := range inv.backends {
			if b.Descriptor().Name == preferred {
				add(b)
				break
			}
		}
	}
	for _, b := range inv.backends {
		add(b)
	}
	return ordered
}

// attempt runs a single backend to completion or failure
func (inv *Invoker) attempt(ctx context.Context, backend Backend, conversation []models.Message) (string, error) {
	desc := backend.Descriptor()

	switch b := backend.(type) {
	case SyncBackend:
		text, err := b.Complete(ctx, conversation, desc.MaxTokens, desc.Temperature)
		if err != nil {
			return "", err
		}
		if text == "" {
			return "", errors.New("empty completion text")
		}
		return text, nil
	case AsyncBackend:
		return inv.attemptAsync(ctx, b, conversation)
	default:
		return "", fmt.Errorf("backend %s implements neither completion shape", desc.Name)
	}
}

// attemptAsync starts a run and polls it under the configured budget. The
// run's server-side resources are released whatever the outcome.
func (inv *Invoker) attemptAsync(ctx context.Context, backend AsyncBackend, conversation []models.Message) (string, error) {
	handle, err := backend.StartRun(ctx, conversation)
	if err != nil {
		return "", fmt.Errorf("starting run: %w", err)
	}
	defer backend.ReleaseRun(handle)

	for polls := 0; polls < inv.poll.MaxCount; polls++ {
		interval := inv.poll.FastInterval
		if polls >= inv.poll.FastCount {
			interval = inv.poll.SlowInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		state, err := backend.PollRun(ctx, handle)
		if err != nil {
			return "", fmt.Errorf("polling run: %w", err)
		}

		if state.Status == StatusCompleted {
			if state.Text == "" {
				return "", errors.New("empty completion text")
			}
			return state.Text, nil
		}
		if state.Status.Terminal() {
			return "", fmt.Errorf("run ended with status %q", state.Status)
		}
	}

	return "", fmt.Errorf("run timed out after %d polls", inv.poll.MaxCount)
}
