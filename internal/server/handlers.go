package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/MrWong99/scenedeck/internal/app"
	"github.com/MrWong99/scenedeck/internal/collection"
	"github.com/MrWong99/scenedeck/internal/launch"
	"github.com/MrWong99/scenedeck/internal/observe"
	"github.com/MrWong99/scenedeck/pkg/scene"
)

// multipartMemory is how much of a multipart upload is held in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

type extractRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

type skippedFile struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type extractResponse struct {
	Added   []scene.Record `json:"added"`
	Skipped []skippedFile  `json:"skipped,omitempty"`
}

type listResponse struct {
	Scenes []scene.Record `json:"scenes"`
	Count  int            `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleExtract accepts either a JSON body {"text", "source"} or a multipart
// form with one or more "files" parts. Parts are imported in form order.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		results []app.ImportResult
		err     error
	)
	switch mediaType {
	case "multipart/form-data":
		results, err = s.extractMultipart(r)
	case "application/json", "":
		results, err = s.extractJSON(r)
	default:
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "expected application/json or multipart/form-data"})
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := extractResponse{Added: []scene.Record{}}
	for _, res := range results {
		resp.Added = append(resp.Added, res.Added...)
		for _, f := range res.Skipped() {
			resp.Skipped = append(resp.Skipped, skippedFile{Source: f.Source, Error: f.Err.Error()})
		}
	}
	observe.Logger(r.Context(), s.logger).Info("extract request handled",
		"added", len(resp.Added),
		"skipped", len(resp.Skipped),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) extractJSON(r *http.Request) ([]app.ImportResult, error) {
	var req extractRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}

	var (
		res app.ImportResult
		err error
	)
	if req.Source == "" || req.Source == scene.PastedSource {
		res, err = s.backend.ImportPaste(r.Context(), req.Text)
	} else {
		res, err = s.backend.ImportReader(r.Context(), req.Source, strings.NewReader(req.Text))
	}
	if err != nil {
		return nil, err
	}
	return []app.ImportResult{res}, nil
}

func (s *Server) extractMultipart(r *http.Request) ([]app.ImportResult, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, errors.New(`multipart form has no "files" parts`)
	}

	results := make([]app.ImportResult, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		res, err := s.backend.ImportReader(r.Context(), fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	recs := s.backend.Scenes()
	writeJSON(w, http.StatusOK, listResponse{Scenes: recs, Count: len(recs)})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n := s.backend.Clear(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := s.backend.Prompt(r.PathValue("id"))
	if errors.Is(err, collection.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, prompt)
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	err := s.backend.Launch(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "launched"})
	case errors.Is(err, collection.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, launch.ErrClipboard), errors.Is(err, launch.ErrOpen):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
