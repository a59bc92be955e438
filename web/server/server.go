package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Server handles web requests for the raytracer
type Server struct {
	port    int
	console *Console
	renders chan struct{} // Limits concurrent renders
}

// NewServer creates a new web server. console may be nil when log capture is not wanted.
func NewServer(port int, console *Console, maxConcurrentRenders int) *Server {
	return &Server{
		port:    port,
		console: console,
		renders: make(chan struct{}, max(1, maxConcurrentRenders)),
	}
}

// Handler returns the routes of the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/render/stream", s.handleRenderStream)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("GET /api/console", s.handleConsole)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	core.Logger().Info("starting web server", slog.String("url", "http://localhost"+addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName, 0)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	response := map[string]any{
		"scene":    sceneName,
		"defaults": sceneObj.SamplingConfig,
		"camera":   sceneObj.CameraConfig,
		"limits": map[string]map[string]int{
			"width":   {"min": widthLimit.min, "max": widthLimit.max},
			"height":  {"min": heightLimit.min, "max": heightLimit.max},
			"samples": {"min": samplesLimit.min, "max": samplesLimit.max},
			"depth":   {"min": depthLimit.min, "max": depthLimit.max},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// createScene builds a scene by registry name. Scene file paths are not
// accepted from clients; files in the scenes directory are addressed by ID.
func (s *Server) createScene(name string, seed int64) (*scene.Scene, error) {
	if seed == 0 {
		seed = core.DefaultSamplingConfig().Seed
	}
	if isFilePath(name) {
		return nil, fmt.Errorf("%q: %w", name, scene.ErrUnknownScene)
	}
	return scene.New(name, seed)
}

// isFilePath reports whether name would be treated as a file path by the registry
func isFilePath(name string) bool {
	return strings.ContainsAny(name, `/\.`)
}

// sceneErrorStatus maps scene construction errors to HTTP status codes
func sceneErrorStatus(err error) int {
	switch {
	case errors.Is(err, scene.ErrUnknownScene):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidConfig), errors.Is(err, scene.ErrInvalidScene):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type intLimit struct{ min, max int }

var (
	widthLimit   = intLimit{1, 2000}
	heightLimit  = intLimit{1, 2000}
	samplesLimit = intLimit{1, 10000}
	depthLimit   = intLimit{1, 1000}
)

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue int, limit intLimit) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < limit.min || parsed > limit.max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, limit.min, limit.max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.Logger().Warn("failed to write response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
