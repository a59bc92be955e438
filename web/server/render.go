package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/imageio"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client. Zero values
// keep the scene's defaults.
type RenderRequest struct {
	Scene     string         `json:"scene"`     // Scene name (e.g., "three-spheres")
	Width     int            `json:"width"`     // Image width
	Height    int            `json:"height"`    // Image height (0 = follow the scene's aspect ratio)
	Samples   int            `json:"samples"`   // Samples per pixel
	Depth     int            `json:"depth"`     // Maximum bounces
	Seed      int64          `json:"seed"`      // Random seed
	Format    imageio.Format `json:"format"`    // Response image format
	Thumbnail int            `json:"thumbnail"` // Scale the response to fit this size (0 = full size)
	Gamma     bool           `json:"gamma"`     // Apply gamma-2 correction
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	MaxDepth         int     `json:"maxDepth"`
	Workers          int     `json:"workers"`
	DurationMs       int64   `json:"durationMs"`
	AverageLuminance float64 `json:"averageLuminance"`
	Summary          string  `json:"summary"`
}

func newStats(rs renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:      rs.TotalPixels,
		TotalSamples:     rs.TotalSamples,
		SamplesPerPixel:  rs.SamplesPerPixel,
		MaxDepth:         rs.MaxDepth,
		Workers:          rs.Workers,
		DurationMs:       rs.Duration.Milliseconds(),
		AverageLuminance: rs.AverageLuminance,
		Summary:          rs.Summary(),
	}
}

// ProgressUpdate is sent via SSE as rows complete
type ProgressUpdate struct {
	RowsDone  int   `json:"rowsDone"`
	TotalRows int   `json:"totalRows"`
	ElapsedMs int64 `json:"elapsedMs"`
}

// CompleteUpdate carries the finished image via SSE
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded image
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Stats     Stats  `json:"stats"`
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, widthLimit); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, heightLimit); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, samplesLimit); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", 0, depthLimit); err != nil {
		return nil, err
	}
	if req.Thumbnail, err = parseIntParam(query, "thumbnail", 0, widthLimit); err != nil {
		return nil, err
	}
	if req.Gamma, err = parseBoolParam(query, "gamma", true); err != nil {
		return nil, err
	}
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}

	req.Format = imageio.PNG
	if value := query.Get("format"); value != "" {
		if req.Format, err = imageio.ParseFormat(value); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// configureScene builds the scene for a request and applies its size and sampling
func (s *Server) configureScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := s.createScene(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}
	err = sceneObj.Configure(core.SamplingConfig{
		Width:           req.Width,
		Height:          req.Height,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.Depth,
		Seed:            req.Seed,
	})
	if err != nil {
		return nil, err
	}

	config := sceneObj.SamplingConfig
	if config.Width > widthLimit.max || config.Height > heightLimit.max {
		return nil, fmt.Errorf("image size %dx%d over the %dx%d limit: %w",
			config.Width, config.Height, widthLimit.max, heightLimit.max, core.ErrInvalidConfig)
	}
	return sceneObj, nil
}

// prepareRender builds the scene and raytracer for a request
func (s *Server) prepareRender(req *RenderRequest) (*scene.Scene, *renderer.Raytracer, error) {
	sceneObj, err := s.configureScene(req)
	if err != nil {
		return nil, nil, err
	}
	raytracer, err := renderer.NewRaytracer(sceneObj, sceneObj.SamplingConfig)
	if err != nil {
		return nil, nil, err
	}
	return sceneObj, raytracer, nil
}

// acquireRenderSlot waits for a free render slot or the end of the request
func (s *Server) acquireRenderSlot(ctx context.Context) (release func(), err error) {
	select {
	case s.renders <- struct{}{}:
		return func() { <-s.renders }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// encodeResult converts a finished frame to the requested image bytes
func encodeResult(frame *renderer.Frame, req *RenderRequest) ([]byte, int, int, error) {
	img := frame.Image(req.Gamma)
	if req.Thumbnail > 0 {
		img = imageio.Thumbnail(img, req.Thumbnail)
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, req.Format); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), img.Bounds().Dx(), img.Bounds().Dy(), nil
}

// handleRender renders a scene and responds with the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sceneObj, raytracer, err := s.prepareRender(req)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	// The request context stops the render when the client disconnects
	ctx := r.Context()
	release, err := s.acquireRenderSlot(ctx)
	if err != nil {
		return
	}
	defer release()

	logger := core.Logger().With(slog.String("scene", sceneObj.Name))
	frame, stats, err := raytracer.Render(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Info("render cancelled by client", slog.Any("error", err))
			return
		}
		writeError(w, http.StatusInternalServerError, "Render error: "+err.Error())
		return
	}

	data, _, _, err := encodeResult(frame, req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Scene", sceneObj.Name)
	w.Header().Set("X-Render-Stats", stats.Summary())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("failed to write image", slog.Any("error", err))
	}
}

// handleRenderStream renders a scene and reports progress with server-sent events
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	s.setSSEHeaders(w)

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEError(w, flusher, "Invalid request: "+err.Error())
		return
	}
	_, raytracer, err := s.prepareRender(req)
	if err != nil {
		s.sendSSEError(w, flusher, err.Error())
		return
	}

	ctx := r.Context()
	release, err := s.acquireRenderSlot(ctx)
	if err != nil {
		return
	}
	defer release()

	// Progress runs on this goroutine, so writing to w here is safe
	startTime := time.Now()
	lastDecile := -1
	raytracer.SetProgress(func(done, total int) {
		decile := done * 10 / total
		if decile == lastDecile {
			return
		}
		lastDecile = decile
		s.sendSSEJSON(w, flusher, "progress", ProgressUpdate{
			RowsDone:  done,
			TotalRows: total,
			ElapsedMs: time.Since(startTime).Milliseconds(),
		})
	})

	frame, stats, err := raytracer.Render(ctx)
	if err != nil {
		s.sendSSEError(w, flusher, "Render error: "+err.Error())
		return
	}

	data, width, height, err := encodeResult(frame, req)
	if err != nil {
		s.sendSSEError(w, flusher, err.Error())
		return
	}
	s.sendSSEJSON(w, flusher, "complete", CompleteUpdate{
		ImageData: base64.StdEncoding.EncodeToString(data),
		Format:    string(req.Format),
		Width:     width,
		Height:    height,
		Stats:     newStats(stats),
	})
}

// setSSEHeaders prepares the response for an event stream
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendSSEJSON sends a JSON payload as an SSE event
func (s *Server) sendSSEJSON(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.sendSSEError(w, flusher, err.Error())
		return
	}
	s.sendSSEEvent(w, flusher, event, string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, flusher http.Flusher, message string) {
	s.sendSSEEvent(w, flusher, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
