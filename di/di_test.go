package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/multimongo/errors"
	"github.com/kbukum/multimongo/resilience"
)

type store interface{ Name() string }

type memStore struct{ name string }

func (m *memStore) Name() string { return m.name }

type closer struct {
	name   string
	closed *[]string
}

func (c *closer) Close() error {
	*c.closed = append(*c.closed, c.name)
	return nil
}

func TestLazyConstructedOnce(t *testing.T) {
	c := NewContainer()
	var calls int32
	if err := c.Register("greeting", func() string {
		atomic.AddInt32(&calls, 1)
		return "hello"
	}); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatal("lazy constructor ran on registration")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v := MustResolve[string](c, "greeting"); v != "hello" {
				t.Errorf("got %q", v)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("constructor calls = %d, want 1", calls)
	}
}

func TestEagerAndSingleton(t *testing.T) {
	c := NewContainer()
	called := false
	if err := c.RegisterEager("eager", func() (int, error) { called = true; return 7, nil }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("eager constructor should run on registration")
	}
	if err := c.RegisterSingleton("single", "value"); err != nil {
		t.Fatal(err)
	}
	if v, _ := Resolve[int](c, "eager"); v != 7 {
		t.Errorf("eager = %d", v)
	}
	if v, _ := Resolve[string](c, "single"); v != "value" {
		t.Errorf("single = %q", v)
	}

	err := c.RegisterEager("broken", func() (int, error) { return 0, fmt.Errorf("nope") })
	if err == nil {
		t.Fatal("expected eager failure")
	}
	if c.Has("broken") {
		t.Error("failed eager registration should be removed")
	}
}

func TestDuplicateKeyRejected(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("x", 1)
	err := c.RegisterSingleton("x", 2)
	if !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("err = %v, want CONFLICT", err)
	}
}

func TestResolveErrors(t *testing.T) {
	c := NewContainer()
	_, err := c.Resolve("missing")
	if !errors.HasCode(err, errors.ErrCodeBeanNotFound) {
		t.Errorf("missing err = %v", err)
	}

	_ = c.Register("failing", func() (string, error) { return "", fmt.Errorf("dial refused") })
	_, err = c.Resolve("failing")
	if !errors.HasCode(err, errors.ErrCodeBeanCreation) || !strings.Contains(err.Error(), "dial refused") {
		t.Errorf("failing err = %v", err)
	}

	_ = c.RegisterSingleton("number", 42)
	if _, err := Resolve[string](c, "number"); err == nil || !strings.Contains(err.Error(), "expected string") {
		t.Errorf("type mismatch err = %v", err)
	}
	if _, ok := TryResolve[string](c, "number"); ok {
		t.Error("TryResolve should fail on type mismatch")
	}
}

func TestInvalidConstructors(t *testing.T) {
	c := NewContainer()
	tests := []struct {
		name string
		ctor interface{}
	}{
		{"not a func", 42},
		{"no result", func() {}},
		{"second result not error", func() (int, int) { return 1, 2 }},
		{"unsupported param", func(s string) int { return 1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.Register(tc.name, tc.ctor); err == nil {
				t.Error("expected registration error")
			}
		})
	}
}

func TestConstructorParameters(t *testing.T) {
	type ctxKey struct{}
	c := NewContainer()
	_ = c.RegisterSingleton("base", 10)
	_ = c.Register("from_container", func(c Container) (int, error) {
		base, err := Resolve[int](c, "base")
		return base + 1, err
	})
	_ = c.Register("from_context", func(ctx context.Context) (string, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v, nil
	})
	_ = c.Register("from_both", func(ctx context.Context, c Container) (int, error) {
		v, err := ResolveContext[int](ctx, c, "from_container")
		return v * 2, err
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "tenant-a")
	if v, _ := ResolveContext[string](ctx, c, "from_context"); v != "tenant-a" {
		t.Errorf("from_context = %q", v)
	}
	if v, _ := Resolve[int](c, "from_both"); v != 22 {
		t.Errorf("from_both = %d", v)
	}
}

func TestCircularReference(t *testing.T) {
	c := NewContainer()
	_ = c.Register("a", func(c Container) (int, error) { return Resolve[int](c, "b") })
	_ = c.Register("b", func(c Container) (int, error) { return Resolve[int](c, "a") })

	done := make(chan error, 1)
	go func() {
		_, err := c.Resolve("a")
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "circular reference") {
			t.Errorf("err = %v, want circular reference", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("circular resolution deadlocked")
	}
}

func TestResolveType(t *testing.T) {
	c := NewContainer()
	if _, err := ResolveType[store](c); !errors.HasCode(err, errors.ErrCodeBeanNotFound) {
		t.Errorf("empty err = %v", err)
	}

	_ = c.RegisterSingleton("orders_store", &memStore{name: "orders"})
	s, err := ResolveType[store](c)
	if err != nil || s.Name() != "orders" {
		t.Fatalf("single candidate = %v, %v", s, err)
	}

	_ = c.Register("audit_store", func() *memStore { return &memStore{name: "audit"} })
	if _, err := ResolveType[store](c); !errors.HasCode(err, errors.ErrCodeAmbiguousBean) {
		t.Errorf("ambiguous err = %v", err)
	}

	_ = c.Register("main_store", func() *memStore { return &memStore{name: "main"} }, AsPrimary())
	s, err = ResolveType[store](c)
	if err != nil || s.Name() != "main" {
		t.Errorf("primary candidate = %v, %v", s, err)
	}
	if !HasType[*memStore](c) || HasType[*closer](c) {
		t.Error("HasType mismatch")
	}
}

func TestWithTypeOverridesInferredType(t *testing.T) {
	c := NewContainer()
	_ = c.Register("s", func() interface{} { return &memStore{name: "x"} }, WithType(reflectTypeOf[store]()))
	if keys := c.KeysOfType(reflectTypeOf[store]()); len(keys) != 1 {
		t.Errorf("KeysOfType = %v", keys)
	}
}

func TestCloseReverseCreationOrder(t *testing.T) {
	c := NewContainer()
	var closed []string
	_ = c.Register("first", func() *closer { return &closer{name: "first", closed: &closed} })
	_ = c.Register("second", func(c Container) (*closer, error) {
		if _, err := c.Resolve("first"); err != nil {
			return nil, err
		}
		return &closer{name: "second", closed: &closed}, nil
	})
	_ = c.Register("never", func() *closer { return &closer{name: "never", closed: &closed} })
	_ = c.Register("custom", func() string { return "custom" }, WithDestroy(func(_ context.Context, v interface{}) error {
		closed = append(closed, v.(string))
		return stderrors.New("disconnect failed")
	}))
	_ = c.RegisterSingleton("external", &closer{name: "external", closed: &closed})

	if _, err := c.Resolve("second"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Resolve("custom"); err != nil {
		t.Fatal(err)
	}

	err := c.Close(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disconnect failed") {
		t.Errorf("Close err = %v", err)
	}
	want := []string{"custom", "second", "first"}
	if strings.Join(closed, ",") != strings.Join(want, ",") {
		t.Errorf("close order = %v, want %v", closed, want)
	}

	if err := c.Close(context.Background()); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := c.RegisterSingleton("late", 1); err == nil {
		t.Error("registration after Close should fail")
	}
}

func TestRetryOption(t *testing.T) {
	c := NewContainer()
	attempts := 0
	_ = c.Register("flaky", func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", fmt.Errorf("not yet")
		}
		return "ok", nil
	}, WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}))

	if v, err := Resolve[string](c, "flaky"); err != nil || v != "ok" {
		t.Fatalf("flaky = %q, %v", v, err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d", attempts)
	}
}

func TestRegistrations(t *testing.T) {
	c := NewContainer()
	_ = c.Register("lazy", func() int { return 1 }, WithSource("primary-mongo"), AsPrimary())
	_ = c.RegisterSingleton("single", "x")

	infos := c.Registrations()
	if len(infos) != 2 {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].Key != "lazy" || infos[0].Mode != Lazy || infos[0].Initialized || !infos[0].Primary || infos[0].Source != "primary-mongo" || infos[0].Type != "int" {
		t.Errorf("lazy info = %+v", infos[0])
	}
	if infos[1].Mode != Singleton || !infos[1].Initialized {
		t.Errorf("singleton info = %+v", infos[1])
	}

	_, _ = c.Resolve("lazy")
	if !c.Registrations()[0].Initialized {
		t.Error("lazy should be initialized after resolve")
	}
	if strings.Join(c.Keys(), ",") != "lazy,single" {
		t.Errorf("Keys = %v", c.Keys())
	}
	if Lazy.String() != "lazy" || RegistrationMode(9).String() != "unknown" {
		t.Error("mode names")
	}
}
