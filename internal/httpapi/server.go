package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hfserve/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Health() types.HealthResponse
	Status() types.StatusResponse
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Ready() bool
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
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Get("/health", h.health)
	r.Get("/status", h.status)
	r.Post("/generate", h.generate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// health godoc
// @Summary      Service health
// @Description  Reports the configured model and backend.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

// status godoc
// @Summary      Engine status
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// generate godoc
// @Summary      Generate text
// @Description  Continues the prompt with the loaded model. Unset sampling fields use server defaults.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Generation request"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /generate [post]
func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		IncrementBadRequest("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			IncrementBadRequest("body_too_large")
		} else {
			IncrementBadRequest("invalid_json")
		}
		// same message for oversize bodies to avoid leaking the limit
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateGenerate(req); msg != "" {
		IncrementBadRequest("invalid_field")
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	start := time.Now()
	lvl := requestLogLevel(r)
	if lvl >= LevelInfo {
		ev := zlog.Info().Str("path", r.URL.Path).Int("prompt_chars", len([]rune(req.Prompt)))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			ev = ev.Str("request_id", rid)
		}
		ev.Msg("generate start")
	}

	ctx, cancel := generateContext(r)
	defer cancel()
	resp, err := h.svc.Generate(ctx, req)
	if err != nil {
		// Client went away: nobody to answer.
		if r.Context().Err() != nil {
			logGenerateEnd(r, lvl, 499, start, err)
			return
		}
		// Every failure past the boundary has one shape.
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		logGenerateEnd(r, lvl, http.StatusInternalServerError, start, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	logGenerateEnd(r, lvl, http.StatusOK, start, nil)
}

// validateGenerate checks field ranges. It returns "" when req is acceptable.
func validateGenerate(req types.GenerateRequest) string {
	if req.Prompt == "" {
		return "prompt is required"
	}
	if req.MaxNewTokens != nil && *req.MaxNewTokens < 1 {
		return "max_new_tokens must be >= 1"
	}
	if req.Temperature != nil && (*req.Temperature < 0 || math.IsNaN(*req.Temperature)) {
		return "temperature must be >= 0"
	}
	if req.TopP != nil && !(*req.TopP > 0 && *req.TopP <= 1) {
		return "top_p must be in (0, 1]"
	}
	return ""
}
