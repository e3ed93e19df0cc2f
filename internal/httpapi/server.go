package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/example/topicatlas/api"
	"github.com/example/topicatlas/internal/config"
	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/export"
	"github.com/example/topicatlas/internal/query"
	"github.com/example/topicatlas/internal/swaggerui"
)

type Server struct {
	cfg     *config.Config
	cache   *dataset.Cache
	exports *export.Manager
	logger  *zap.Logger
}

func NewRouter(cfg *config.Config, cache *dataset.Cache, exports *export.Manager, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, cache: cache, exports: exports, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(loggingMiddleware(logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Accept"},
			ExposedHeaders: []string{"Content-Disposition"},
		})
		r.Use(c.Handler)
	}

	r.Get("/healthz", s.GetHealthz)
	r.Get("/readyz", s.GetReadyz)
	r.Get(cfg.OpenAPIPath, s.serveOpenAPI)
	r.Mount(cfg.SwaggerUIPath, swaggerui.Handler(cfg.OpenAPIPath, cfg.SwaggerUIPath))

	wrapper := ServerInterfaceWrapper{Handler: s, ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	}}

	r.Route("/api", func(r chi.Router) {
		r.Get("/sources", s.ListSources)
		r.Get("/topics", wrapper.ListTopics)
		r.Get("/topics/{label}/members", wrapper.ListTopicMembers)
		r.Get("/people", wrapper.SearchPeople)
		r.Get("/people/{identity}", wrapper.GetPerson)
		r.Get("/people/{identity}/export.csv", wrapper.ExportPerson)
		r.Get("/records", wrapper.FilterRecords)
		r.Get("/records/export.csv", wrapper.ExportRecords)
		r.Post("/records/exports", wrapper.SaveRecordsExport)
	})

	return r
}

func (s *Server) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.Spec)
}

func (s *Server) GetHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: Ok})
}

func (s *Server) GetReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := s.cache.Get(ctx, s.cfg.DataPath); err != nil {
		s.writeLoadError(w, err)
		return
	}
	if err := s.exports.IsWritable(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "export directory not writable", map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Health{Status: Ok})
}

// dataset returns the loaded dataset, writing the error response itself when
// loading fails.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := s.cache.Get(r.Context(), s.cfg.DataPath)
	if err != nil {
		s.writeLoadError(w, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		s.logger.Error("dataset unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "dataset_unavailable", err.Error(), loadErr.Details())
		return
	}
	writeError(w, http.StatusServiceUnavailable, "dataset_unavailable", "dataset could not be loaded", map[string]any{"error": err.Error()})
}

func (s *Server) ListSources(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	resp := SourceList{
		Items:      make([]Source, 0, len(ds.Sources())),
		Records:    len(ds.Records),
		Encoding:   ds.Encoding,
		Duplicates: ds.Duplicates,
	}
	for _, spec := range ds.Sources() {
		src := Source{Name: string(spec.Name), Title: spec.Title, Derived: spec.Derived}
		if spec.Derived {
			src.Note = ds.Schema.DerivedNote
		}
		resp.Items = append(resp.Items, src)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) ListTopics(w http.ResponseWriter, r *http.Request, params ListTopicsParams) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	src, ok := resolveSource(w, ds, params.Source, dataset.All)
	if !ok {
		return
	}
	sortMode, err := query.ParseSortMode(deref(params.Sort))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	facets := query.Facets(ds.Records, query.FacetQuery{
		Source:         src,
		Search:         deref(params.Q),
		Sort:           sortMode,
		HideSingletons: params.HideSingletons != nil && *params.HideSingletons,
	})
	writeJSON(w, http.StatusOK, FacetList{Source: string(src), Items: facets})
}

func (s *Server) ListTopicMembers(w http.ResponseWriter, r *http.Request, label string, params ListTopicMembersParams) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	src, ok := resolveSource(w, ds, params.Source, dataset.All)
	if !ok {
		return
	}
	members := query.MembersOf(ds.Records, src, label)
	writeJSON(w, http.StatusOK, MemberList{Source: string(src), Label: label, Items: summaries(ds, members)})
}

func (s *Server) SearchPeople(w http.ResponseWriter, r *http.Request, params SearchPeopleParams) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	people := query.SearchRecords(ds.Records, deref(params.Q))
	writeJSON(w, http.StatusOK, PersonList{Items: summaries(ds, people)})
}

func (s *Server) GetPerson(w http.ResponseWriter, r *http.Request, identity string) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	p, found := query.Lookup(ds, identity)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "person not found", map[string]any{"identity": identity})
		return
	}
	writeJSON(w, http.StatusOK, toPerson(ds, p))
}

func (s *Server) ExportPerson(w http.ResponseWriter, r *http.Request, identity string) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	rec, found := query.FindRecord(ds.Records, identity)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "person not found", map[string]any{"identity": identity})
		return
	}
	s.writeCSV(w, rec.Name, ds, []dataset.Record{rec})
}

func (s *Server) FilterRecords(w http.ResponseWriter, r *http.Request, params FilterRecordsParams) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	f, ok := buildFilter(w, ds, params)
	if !ok {
		return
	}
	matched := query.Apply(ds.Records, f)
	resp := RecordList{Total: len(matched), Items: make([]Person, 0, len(matched))}
	for _, rec := range matched {
		resp.Items = append(resp.Items, toPerson(ds, query.ProfileOf(ds, rec)))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) ExportRecords(w http.ResponseWriter, r *http.Request, params FilterRecordsParams) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	f, ok := buildFilter(w, ds, params)
	if !ok {
		return
	}
	s.writeCSV(w, "filtered", ds, query.Apply(ds.Records, f))
}

// SaveRecordsExport stores the filtered export in the export directory
// instead of streaming it back.
func (s *Server) SaveRecordsExport(w http.ResponseWriter, r *http.Request, params FilterRecordsParams) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	f, ok := buildFilter(w, ds, params)
	if !ok {
		return
	}
	records := query.Apply(ds.Records, f)
	path, err := s.exports.Save("filtered", ds.Sources(), records, s.cfg.ExportSeparator)
	if err != nil {
		s.logger.Error("export save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export_failed", "failed to save export", map[string]any{"error": err.Error()})
		return
	}
	s.logger.Info("export saved", zap.String("path", path), zap.Int("rows", len(records)))
	writeJSON(w, http.StatusCreated, ExportResult{File: filepath.Base(path), Rows: len(records)})
}

func (s *Server) writeCSV(w http.ResponseWriter, stem string, ds *dataset.Dataset, records []dataset.Record) {
	var buf bytes.Buffer
	if err := export.WriteRecords(&buf, ds.Sources(), records, s.cfg.ExportSeparator); err != nil {
		s.logger.Error("export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "failed to write export", map[string]any{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(stem, time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func buildFilter(w http.ResponseWriter, ds *dataset.Dataset, params FilterRecordsParams) (query.Filter, bool) {
	catSrc, ok := resolveSource(w, ds, params.CategorySource, ds.SourceOr("category"))
	if !ok {
		return query.Filter{}, false
	}
	kwSrc, ok := resolveSource(w, ds, params.KeywordSource, ds.SourceOr("keyword"))
	if !ok {
		return query.Filter{}, false
	}
	mode, err := query.ParseMatchMode(deref(params.Match))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return query.Filter{}, false
	}
	var cats []string
	if params.Category != nil {
		cats = *params.Category
	}
	return query.Filter{
		CategorySource: catSrc,
		Categories:     cats,
		KeywordSource:  kwSrc,
		Keyword:        deref(params.Keyword),
		Mode:           mode,
	}, true
}

func resolveSource(w http.ResponseWriter, ds *dataset.Dataset, param *string, def dataset.Source) (dataset.Source, bool) {
	raw := strings.ToLower(strings.TrimSpace(deref(param)))
	if raw == "" {
		return def, true
	}
	src := dataset.Source(raw)
	if !ds.HasSource(src) {
		names := make([]string, 0, len(ds.Sources())+1)
		names = append(names, string(dataset.All))
		for _, spec := range ds.Sources() {
			names = append(names, string(spec.Name))
		}
		writeError(w, http.StatusBadRequest, "unknown_source", fmt.Sprintf("unknown source %q", raw), map[string]any{"available": names})
		return "", false
	}
	return src, true
}

func summaries(ds *dataset.Dataset, records []dataset.Record) []PersonSummary {
	out := make([]PersonSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, PersonSummary{
			Identity:   rec.Identity,
			Name:       rec.Name,
			Contact:    rec.Contact,
			ProfileURL: ds.ProfileURL(rec),
		})
	}
	return out
}

func toPerson(ds *dataset.Dataset, p query.Profile) Person {
	out := Person{
		Identity:   p.Record.Identity,
		Name:       p.Record.Name,
		Contact:    p.Record.Contact,
		ExternalID: p.Record.ExternalID,
		ProfileURL: p.ProfileURL,
		Sources:    p.Sources,
		Merged:     p.Merged,
	}
	for _, sv := range p.Sources {
		if sv.Derived && !sv.Labels.Empty() {
			out.Note = ds.Schema.DerivedNote
			break
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	e := Error{Code: code, Message: message}
	if details != nil {
		e.Details = &details
	}
	writeJSON(w, status, e)
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
