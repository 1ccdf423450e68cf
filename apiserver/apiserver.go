// Package apiserver exposes roll rendering over HTTP.
package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"pianoroll/midiparser"
	"pianoroll/midiprocessor"
	"pianoroll/rollgenerator"
)

// maxUpload bounds the size of an uploaded MIDI file.
const maxUpload = 32 << 20

type Server struct {
	layout rollgenerator.Layout
	gen    *rollgenerator.Generator
	logger *slog.Logger
	router *mux.Router
}

func New(layout rollgenerator.Layout, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gen, err := rollgenerator.New(layout, rollgenerator.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	s := &Server{layout: layout, gen: gen, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/render", s.Render).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/tracker-bars", s.TrackerBars).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	r.Use(mux.CORSMethodMiddleware(r))
	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, reason string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Reason: reason})
}

// Render converts the uploaded MIDI file and answers with the PNG. The file
// is either the raw request body or the "file" field of a multipart form.
// An optional tempo query parameter overrides the render tempo.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		return
	}

	gen := s.gen
	if q := r.URL.Query().Get("tempo"); q != "" {
		tempo, err := rollgenerator.ParseRenderTempo(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "bad request", err)
			return
		}
		layout := s.layout
		layout.RenderTempo = tempo
		if gen, err = rollgenerator.New(layout, rollgenerator.WithLogger(s.logger)); err != nil {
			s.writeError(w, http.StatusBadRequest, "bad request", err)
			return
		}
	}

	data, name, err := readUpload(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeError(w, status, "bad request", err)
		return
	}

	start := time.Now()
	title := rollgenerator.Title(name)
	roll, encoded, err := midiprocessor.Render(gen, data, title)
	if err != nil {
		reason := midiprocessor.FailureReason(err)
		s.logger.Warn("render rejected", "name", name, "reason", reason, "err", err)
		s.writeError(w, statusFor(err), reason, err)
		return
	}

	output := rollgenerator.OutputName(name, roll.Tempo.RenderTempo)
	s.logger.Info("render served",
		"name", name,
		"tempo", roll.Tempo.RenderTempo,
		"holes", len(roll.Holes),
		"bytes", len(encoded),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", output))
	h.Set("X-Roll-Tempo", fmt.Sprint(roll.Tempo.RenderTempo))
	h.Set("X-Roll-Holes", fmt.Sprint(len(roll.Holes)))
	w.Write(encoded)
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		return data, hdr.Filename, err
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty request body")
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "roll.mid"
	}
	return data, name, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, midiparser.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, rollgenerator.ErrMissingTempo), errors.Is(err, rollgenerator.ErrRollTooLong):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) TrackerBars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rollgenerator.TrackerBars())
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("running server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
