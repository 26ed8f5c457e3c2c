package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cleepadm/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Ready() bool
	Status() types.StatusResponse
	Modules() types.ModulesResponse
	Drivers() []types.DriverStatus
	Renderings() types.RenderingsResponse
	Advisory() types.AdvisoryResponse
	Config() *types.MergedConfig
	Notifications() types.NotificationsResponse
	Monitoring() types.MonitoringResponse

	InstallModule(ctx context.Context, module string) error
	UpdateModule(ctx context.Context, module string) error
	UninstallModule(ctx context.Context, module string) error
	UpdateCleep(ctx context.Context) error
	InstallDriver(ctx context.Context, driverType, driverName string, force bool) error
	UninstallDriver(ctx context.Context, driverType, driverName string) error
	LoadRenderings(ctx context.Context) error
	ToggleRendering(ctx context.Context, renderer, event string) (bool, error)
	SetSetting(ctx context.Context, name string, value json.RawMessage, module string) error
	InvokeAffordance(handle string) error
	Reboot(ctx context.Context) error
	Poweroff(ctx context.Context) error
	Restart(ctx context.Context) error
	CheckUpdates(ctx context.Context) error
	Logs(ctx context.Context) (json.RawMessage, error)
	ClearLogs(ctx context.Context) error
	BackupConfig(ctx context.Context) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Route("/modules", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Modules())
		})
		r.Post("/{name}/{op}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			var fn func(context.Context, string) error
			switch chi.URLParam(r, "op") {
			case "install":
				fn = svc.InstallModule
			case "update":
				fn = svc.UpdateModule
			case "uninstall":
				fn = svc.UninstallModule
			default:
				writeJSONError(w, http.StatusNotFound, "unknown operation")
				return
			}
			mutate(w, r, http.StatusAccepted, func(ctx context.Context) error { return fn(ctx, name) })
		})
	})

	r.Post("/cleep/update", func(w http.ResponseWriter, r *http.Request) {
		mutate(w, r, http.StatusAccepted, svc.UpdateCleep)
	})

	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"drivers": svc.Drivers()})
		})
		r.Post("/{type}/{name}/{op}", func(w http.ResponseWriter, r *http.Request) {
			typ, name := chi.URLParam(r, "type"), chi.URLParam(r, "name")
			switch chi.URLParam(r, "op") {
			case "install":
				force := r.URL.Query().Get("force") == "1" || r.URL.Query().Get("force") == "true"
				mutate(w, r, http.StatusAccepted, func(ctx context.Context) error {
					return svc.InstallDriver(ctx, typ, name, force)
				})
			case "uninstall":
				mutate(w, r, http.StatusAccepted, func(ctx context.Context) error {
					return svc.UninstallDriver(ctx, typ, name)
				})
			default:
				writeJSONError(w, http.StatusNotFound, "unknown operation")
			}
		})
	})

	r.Route("/renderings", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Renderings())
		})
		r.Post("/reload", func(w http.ResponseWriter, r *http.Request) {
			mutate(w, r, http.StatusOK, svc.LoadRenderings)
		})
		r.Post("/toggle", func(w http.ResponseWriter, r *http.Request) {
			var req types.ToggleRenderingRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if strings.TrimSpace(req.Renderer) == "" || strings.TrimSpace(req.Event) == "" {
				writeJSONError(w, http.StatusBadRequest, "renderer and event are required")
				return
			}
			start := time.Now()
			ctx, cancel := requestContext(r)
			defer cancel()
			suppressed, err := svc.ToggleRendering(ctx, req.Renderer, req.Event)
			if err != nil {
				writeError(w, r, err, start)
				return
			}
			logRequest(r, http.StatusOK, start, nil)
			writeJSON(w, http.StatusOK, types.RenderingStatus{Renderer: req.Renderer, Event: req.Event, Suppressed: suppressed})
		})
	})

	r.Get("/advisory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Advisory())
	})
	r.Post("/advisory/{handle}", func(w http.ResponseWriter, r *http.Request) {
		h := chi.URLParam(r, "handle")
		mutate(w, r, http.StatusOK, func(context.Context) error { return svc.InvokeAffordance(h) })
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Config())
	})

	r.Route("/system", func(r chi.Router) {
		r.Post("/reboot", func(w http.ResponseWriter, r *http.Request) { mutate(w, r, http.StatusAccepted, svc.Reboot) })
		r.Post("/poweroff", func(w http.ResponseWriter, r *http.Request) { mutate(w, r, http.StatusAccepted, svc.Poweroff) })
		r.Post("/restart", func(w http.ResponseWriter, r *http.Request) { mutate(w, r, http.StatusAccepted, svc.Restart) })
		r.Post("/check-updates", func(w http.ResponseWriter, r *http.Request) { mutate(w, r, http.StatusOK, svc.CheckUpdates) })
		r.Post("/backup", func(w http.ResponseWriter, r *http.Request) { mutate(w, r, http.StatusOK, svc.BackupConfig) })
		r.Post("/logs/clear", func(w http.ResponseWriter, r *http.Request) { mutate(w, r, http.StatusOK, svc.ClearLogs) })
		r.Post("/settings/{name}", func(w http.ResponseWriter, r *http.Request) {
			var req types.SettingRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if len(req.Value) == 0 {
				writeJSONError(w, http.StatusBadRequest, "value is required")
				return
			}
			name := chi.URLParam(r, "name")
			mutate(w, r, http.StatusOK, func(ctx context.Context) error {
				return svc.SetSetting(ctx, name, req.Value, req.Module)
			})
		})
		r.Get("/logs", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, cancel := requestContext(r)
			defer cancel()
			logs, err := svc.Logs(ctx)
			if err != nil {
				writeError(w, r, err, start)
				return
			}
			writeJSON(w, http.StatusOK, types.LogsResponse{Logs: logs})
		})
		r.Get("/monitoring", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Monitoring())
		})
	})

	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Notifications())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// mutate runs a mutation with the joined request context and writes an ack or the mapped error.
func mutate(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context) error) {
	start := time.Now()
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := fn(ctx); err != nil {
		writeError(w, r, err, start)
		return
	}
	logRequest(r, status, start, nil)
	ack := "ok"
	if status == http.StatusAccepted {
		ack = "accepted"
	}
	writeJSON(w, status, types.AckResponse{Status: ack})
}

// decodeJSON enforces the JSON content type and body size limit.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
