package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("down")

func fail(context.Context) error { return errDown }
func succeed(context.Context) error { return nil }

func newTestBreaker(clock *time.Time, transitions *[]string) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "primary",
		MaxFailures: 2,
		Timeout:     time.Minute,
		OnStateChange: func(name string, from, to State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
	cb.now = func() time.Time { return *clock }
	return cb
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := time.Unix(0, 0)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)

	if cb.State() != StateClosed {
		t.Fatalf("initial state = %s", cb.State())
	}

	_ = cb.Execute(ctx, fail)
	if cb.State() != StateClosed {
		t.Fatal("one failure should not open the circuit")
	}
	_ = cb.Execute(ctx, fail)
	if cb.State() != StateOpen {
		t.Fatal("expected open after max failures")
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("open circuit should fail fast, err=%v called=%v", err, called)
	}

	clock = clock.Add(time.Minute)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state after timeout = %s", cb.State())
	}
	if err := cb.Execute(ctx, fail); !errors.Is(err, errDown) {
		t.Fatalf("trial call err = %v", err)
	}
	if cb.State() != StateOpen {
		t.Fatal("failed trial should reopen")
	}

	clock = clock.Add(time.Minute)
	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("trial call err = %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatal("successful trial should close")
	}

	want := []string{"closed->open", "open->half-open", "half-open->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreakerSingleTrial(t *testing.T) {
	ctx := context.Background()
	clock := time.Unix(0, 0)
	var transitions []string
	cb := newTestBreaker(&clock, &transitions)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	clock = clock.Add(time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- cb.Execute(ctx, func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	if err := cb.Execute(ctx, succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("second call during trial err = %v, want ErrCircuitOpen", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("trial err = %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatal("successful trial should close")
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})
	_ = cb.Execute(context.Background(), fail)
	if cb.State() != StateOpen {
		t.Fatal("expected open")
	}
	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatal("expected closed after reset")
	}
}

func TestStateString(t *testing.T) {
	if StateHalfOpen.String() != "half-open" || State(9).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
