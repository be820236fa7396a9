// Package server exposes the records and fit results of a store over a
// read-only JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/revelaction/syncomp/infer"
	"github.com/revelaction/syncomp/logger"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/stat"
	"github.com/revelaction/syncomp/storage"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Reader is the part of a store the API reads from.
type Reader interface {
	storage.RecordReader
	storage.FitReader
}

type Handler struct {
	store Reader
	log   *logger.Logger
}

func NewHandler(store Reader, log *logger.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// NewRouter creates the API router with all endpoints
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/records", h.Records).Methods("GET")
	v1.HandleFunc("/records/{id:[0-9]+}", h.Record).Methods("GET")
	v1.HandleFunc("/summary", h.Summary).Methods("GET")
	v1.HandleFunc("/fits", h.Fits).Methods("GET")
	v1.HandleFunc("/fits/{runId}", h.Fit).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
	return c.Handler(r)
}

// RecordPage is one page of the records table.
type RecordPage struct {
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Records []sent.Record `json:"records"`
}

// Records handles GET /v1/records?type=&limit=&offset=
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	limit, err := intParam(r, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	page := RecordPage{Total: len(records), Offset: offset, Records: []sent.Record{}}
	if offset < len(records) {
		end := min(offset+limit, len(records))
		page.Records = records[offset:end]
	}
	writeJSON(w, http.StatusOK, page)
}

// Record handles GET /v1/records/{id}
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	rec, err := h.store.Record(id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Summary handles GET /v1/summary?type=
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	records, ok := h.records(w, r)
	if !ok {
		return
	}

	hdl := stat.NewHandler()
	hdl.Aggregate(records)
	writeJSON(w, http.StatusOK, hdl.Get())
}

// Fits handles GET /v1/fits. The null distributions are left out.
func (h *Handler) Fits(w http.ResponseWriter, r *http.Request) {
	fits, err := h.store.Fits()
	if err != nil {
		h.storeError(w, err)
		return
	}

	list := make([]infer.Result, len(fits))
	for i, f := range fits {
		list[i] = *f
		list[i].Null = nil
	}
	writeJSON(w, http.StatusOK, list)
}

// Fit handles GET /v1/fits/{runId}
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Fit(mux.Vars(r)["runId"])
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// records returns the records, restricted to the type query parameter if
// given. It writes the error response itself.
func (h *Handler) records(w http.ResponseWriter, r *http.Request) ([]sent.Record, bool) {
	records, err := h.store.Records()
	if err != nil {
		h.storeError(w, err)
		return nil, false
	}

	t := r.URL.Query().Get("type")
	if t == "" {
		return records, true
	}

	docType, err := sent.ParseDocType(t)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	var filtered []sent.Record
	for _, rec := range records {
		if rec.Type == docType {
			filtered = append(filtered, rec)
		}
	}
	return filtered, true
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error("store: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// ListenAndServe serves handler on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func intParam(r *http.Request, name string, defaultValue int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
