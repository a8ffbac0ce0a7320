package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
	"github.com/MeKo-Tech/qrbatch/internal/version"
)

// maxBodyBytes bounds POST bodies. A payload never exceeds the version 40
// byte capacity, so anything larger is rejected before decoding.
const maxBodyBytes = 64 << 10

// renderParams are the resolved parameters of one render request.
type renderParams struct {
	data   string
	level  qr.Level
	size   int
	border int
}

// qrRequest is the JSON body accepted by POST /v1/qr. Numeric fields may be
// omitted to use the server defaults.
type qrRequest struct {
	Data   string `json:"data"`
	Size   *int   `json:"size,omitempty"`
	Level  string `json:"level,omitempty"`
	Border *int   `json:"border,omitempty"`
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	levels := make([]string, len(qr.Levels))
	for i, l := range qr.Levels {
		levels[i] = l.String()
	}
	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Levels:  levels,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	if s.engine != nil {
		response.Engine = s.engine.Name()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger().Error("failed to encode health response", "error", err)
	}
}

// qrHandler renders one QR code as PNG.
//
// GET reads data, size, level and border from the query string. POST accepts
// the same fields as a JSON object or as a form.
func (s *Server) qrHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		s.writeErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params, err := s.parseRenderRequest(w, r)
	if err != nil {
		qrRequestsTotal.WithLabelValues("invalid").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	qrPayloadBytes.Observe(float64(len(params.data)))

	start := time.Now()
	body, ver, err := s.render(params)
	if err != nil {
		if errors.Is(err, qr.ErrDataTooLong) {
			qrRequestsTotal.WithLabelValues("too_long").Inc()
			s.writeErrorResponse(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		var rerr *raster.RasterError
		if errors.As(err, &rerr) {
			qrRequestsTotal.WithLabelValues("invalid").Inc()
			s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		qrRequestsTotal.WithLabelValues("error").Inc()
		s.logger().Error("failed to render QR code", "error", err, "size", params.size)
		s.writeErrorResponse(w, fmt.Sprintf("rendering failed: %v", err), http.StatusInternalServerError)
		return
	}
	qrRenderDuration.Observe(time.Since(start).Seconds())
	qrSymbolVersion.Observe(float64(ver))
	qrRequestsTotal.WithLabelValues("success").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-QR-Version", strconv.Itoa(ver))
	w.Header().Set("X-QR-Level", params.level.String())
	if _, err := w.Write(body); err != nil {
		s.logger().Debug("failed to write PNG response", "error", err)
	}
}

// render encodes and rasterizes p, returning the PNG bytes and the symbol version.
func (s *Server) render(p renderParams) ([]byte, int, error) {
	sym, err := s.engine.Encode(p.data, p.level)
	if err != nil {
		return nil, 0, err
	}
	img, err := raster.Rasterize(sym, p.border, p.size)
	if err != nil {
		return nil, 0, err
	}
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), sym.Version(), nil
}

// parseRenderRequest resolves the request parameters against the server defaults.
func (s *Server) parseRenderRequest(w http.ResponseWriter, r *http.Request) (renderParams, error) {
	p := s.defaults

	var req qrRequest
	switch {
	case r.Method == http.MethodGet:
		if err := formRequest(r.URL.Query().Get, &req); err != nil {
			return p, err
		}
	case isJSON(r.Header.Get("Content-Type")):
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return p, fmt.Errorf("invalid JSON body: %w", err)
		}
	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return p, fmt.Errorf("failed to parse form data: %w", err)
		}
		if err := formRequest(r.FormValue, &req); err != nil {
			return p, err
		}
	}

	if req.Data == "" {
		return p, errors.New("data is required")
	}
	p.data = req.Data

	if req.Level != "" {
		l, err := qr.ParseLevel(req.Level)
		if err != nil {
			return p, err
		}
		p.level = l
	}
	if req.Size != nil {
		if *req.Size <= 0 || *req.Size > s.maxSize {
			return p, fmt.Errorf("invalid size: %d (must be between 1 and %d)", *req.Size, s.maxSize)
		}
		p.size = *req.Size
	}
	if req.Border != nil {
		if *req.Border < 0 || *req.Border > s.maxBorder {
			return p, fmt.Errorf("invalid border: %d (must be between 0 and %d)", *req.Border, s.maxBorder)
		}
		p.border = *req.Border
	}
	return p, nil
}

// formRequest fills req from URL-encoded values.
func formRequest(get func(string) string, req *qrRequest) error {
	req.Data = get("data")
	req.Level = get("level")
	for _, f := range []struct {
		name string
		dst  **int
	}{{"size", &req.Size}, {"border", &req.Border}} {
		v := strings.TrimSpace(get(f.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q (must be an integer)", f.name, v)
		}
		*f.dst = &n
	}
	return nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message}); err != nil {
		s.logger().Error("failed to write error response", "error", err)
	}
}
