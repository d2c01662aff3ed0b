package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/multimongo/component"
	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/server/middleware"
)

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ReadTimeout != 15*time.Second || cfg.IdleTimeout != time.Minute {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if got := (&Config{Host: "0.0.0.0", Port: 9090}).Addr(); got != "0.0.0.0:9090" {
		t.Errorf("Addr() = %s", got)
	}
	for _, port := range []int{-1, 70000} {
		if err := (&Config{Port: port}).Validate(); err == nil {
			t.Errorf("port %d accepted", port)
		}
	}
}

func TestRegisterEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(Config{Host: "127.0.0.1"}, logger.Nop())
	s.RegisterEndpoints(Sources{
		Service:   "orders",
		Version:   "1.0.0",
		Container: di.NewContainer(),
	})

	paths := map[string]bool{}
	for _, r := range s.GinEngine().Routes() {
		paths[r.Path] = true
	}
	for _, p := range []string{"/health", "/alive", "/ready", "/version", "/beans", "/mongo/connections"} {
		if !paths[p] {
			t.Errorf("route %s missing", p)
		}
	}
	if paths["/conditions"] {
		t.Error("/conditions needs a report source")
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/beans", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Errorf("GET /beans = %d", rr.Code)
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("middleware not applied")
	}
}

func TestComponentLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(Config{Host: "127.0.0.1", ReadTimeout: time.Second, WriteTimeout: time.Second}, logger.Nop())
	s.RegisterEndpoints(Sources{Service: "orders"})
	c := NewComponent(s)

	ctx := context.Background()
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %v", h)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(ctx) })

	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health = %v", h)
	}
	d := c.Describe()
	if d.Type != "http" || !strings.HasPrefix(d.Details, "127.0.0.1:") || d.Details == "127.0.0.1:0" {
		t.Errorf("Describe() = %+v", d)
	}

	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "alive" {
		t.Errorf("GET /alive = %d %v", resp.StatusCode, body)
	}

	if err := c.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestStartBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	first := New(Config{Host: "127.0.0.1"}, logger.Nop())
	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	_, port, _ := strings.Cut(first.Addr(), ":")
	n, err := strconv.Atoi(port)
	if err != nil {
		t.Fatal(err)
	}
	second := New(Config{Host: "127.0.0.1", Port: n}, logger.Nop())
	if err := second.Start(context.Background()); err == nil || !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("Start() = %v", err)
	}
}
