package integration_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/reflow-dev/reflow/pkg/server"
	"github.com/reflow-dev/reflow/pkg/state"
)

// TestChiRouterIntegration mounts the sync server inside a host
// application's Chi router.
func TestChiRouterIntegration(t *testing.T) {
	store, err := state.New(map[string]any{"count": float64(0)})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Destroy()

	app := server.New(store, &server.Config{Address: ":0"})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	// The host application's own routes.
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Mount the sync server under a prefix.
	r.Mount("/sync", app.Handler())

	t.Run("host routes still served", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "OK" {
			t.Errorf("body = %q, want OK", rec.Body.String())
		}
	})

	t.Run("mounted sync routes reachable", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sync/healthz", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("middleware chain executes", func(t *testing.T) {
		middlewareExecuted := false

		trackingRouter := chi.NewRouter()
		trackingRouter.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				middlewareExecuted = true
				next.ServeHTTP(w, r)
			})
		})
		trackingRouter.Mount("/", app.Handler())

		req := httptest.NewRequest("GET", "/state", nil)
		rec := httptest.NewRecorder()
		trackingRouter.ServeHTTP(rec, req)

		if !middlewareExecuted {
			t.Error("expected middleware to execute before the sync handler")
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
