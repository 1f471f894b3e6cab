// Package web serves the landmark pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/rimage"
	"go.viam.com/landmark/services/landmark"
	rutils "go.viam.com/landmark/utils"
)

// Upload form field and parameter names.
const (
	FileField      = "file"
	LatitudeParam  = "lat"
	LongitudeParam = "lon"
	BearingParam   = "bearing"
)

// RequestIDHeader echoes the id every log line of a request carries.
const RequestIDHeader = "X-Request-Id"

const (
	// multipart parts beyond this are spooled to disk.
	maxFormMemory = 32 << 20
	// nginx's code for a client that went away before the response.
	statusClientClosedRequest = 499
)

// Locator runs the pipeline for one request.
type Locator interface {
	Locate(ctx context.Context, req landmark.Request) ([]landmark.Box, error)
}

type imageHandler struct {
	locator        Locator
	maxUploadBytes int64
	logger         logging.Logger
}

// NewHandler returns the HTTP API: POST /image runs the pipeline and GET /health reports liveness.
// Every origin is allowed.
func NewHandler(locator Locator, cfg config.NetworkConfig, logger logging.Logger) http.Handler {
	mux := goji.NewMux()
	mux.Handle(pat.Post("/image"), &imageHandler{
		locator:        locator,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger,
	})
	mux.HandleFunc(pat.Get("/health"), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})
	return cors.AllowAll().Handler(mux)
}

func (h *imageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)
	logger := h.logger.WithFields("request_id", requestID)
	start := time.Now()

	req, status, err := h.readRequest(w, r)
	if err != nil {
		logger.Debugw("rejected upload", "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	results, err := h.locator.Locate(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Errorw("error locating buildings", "error", err)
		} else {
			logger.Debugw("rejected upload", "status", status, "error", err)
		}
		http.Error(w, err.Error(), status)
		return
	}
	if results == nil {
		results = []landmark.Box{}
	}
	logger.Infow("answered upload", "results", len(results), "duration", time.Since(start))
	writeJSON(w, http.StatusOK, results, logger)
}

// readRequest reads the uploaded photo and its parameters. The returned status is only meaningful
// with an error.
func (h *imageHandler) readRequest(w http.ResponseWriter, r *http.Request) (landmark.Request, int, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return landmark.Request{}, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return landmark.Request{}, http.StatusBadRequest, fmt.Errorf("invalid multipart upload: %w", err)
	}
	defer func() {
		utils.UncheckedError(r.MultipartForm.RemoveAll())
	}()

	var req landmark.Request
	for _, param := range []struct {
		name string
		dst  *float64
	}{
		{LatitudeParam, &req.Latitude},
		{LongitudeParam, &req.Longitude},
		{BearingParam, &req.Bearing},
	} {
		value, err := floatParam(r, param.name)
		if err != nil {
			return landmark.Request{}, http.StatusBadRequest, err
		}
		*param.dst = value
	}

	file, _, err := r.FormFile(FileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return landmark.Request{}, http.StatusBadRequest, fmt.Errorf("missing %q file", FileField)
		}
		return landmark.Request{}, http.StatusBadRequest, err
	}
	defer utils.UncheckedErrorFunc(file.Close)
	req.Image, err = io.ReadAll(file)
	if err != nil {
		return landmark.Request{}, http.StatusBadRequest, fmt.Errorf("reading %q file: %w", FileField, err)
	}
	return req, 0, nil
}

// floatParam reads a number from the query string or the multipart form.
func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %q parameter", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q parameter must be a number, got %q", name, raw)
	}
	return value, nil
}

func statusFor(err error) int {
	var decodeErr *rimage.DecodeError
	switch {
	case errors.Is(err, landmark.ErrInvalidRequest), errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger logging.Logger) {
	w.Header().Set("Content-Type", rutils.MimeTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debugw("error writing response", "error", err)
	}
}

// RunServer serves handler on address until ctx is done, then shuts down gracefully. This function
// blocks until the server has stopped.
func RunServer(ctx context.Context, address string, handler http.Handler, logger logging.Logger) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	return Serve(ctx, listener, handler, logger)
}

// Serve is RunServer on an existing listener, which it closes.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger logging.Logger) error {
	httpServer := &http.Server{
		Addr:              listener.Addr().String(),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler:           handler,
	}

	utils.PanicCapturingGo(func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			logger.Errorw("error shutting down", "error", err)
		}
	})

	logger.Infow("serving", "url", fmt.Sprintf("http://%s", listener.Addr().String()))
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
