// Package server exposes the BrainLocker store as a local JSON API.
//
// It listens on 127.0.0.1 only; there is no auth because there is one user.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dipak-sahani/brainlocker/internal/bulk"
	"github.com/Dipak-sahani/brainlocker/internal/forms"
	"github.com/Dipak-sahani/brainlocker/internal/logger"
	"github.com/Dipak-sahani/brainlocker/internal/store"
)

const maxBodyBytes = 1 << 20

type Server struct {
	store   *store.Store
	log     *logger.Logger
	mux     *http.ServeMux
	port    int
	version string
}

// New builds the server and its routes. log may be nil.
func New(s *store.Store, port int, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	srv := &Server{
		store:   s,
		log:     log.With("component", "http"),
		mux:     http.NewServeMux(),
		port:    port,
		version: "dev",
	}
	srv.routes()
	return srv
}

// WithVersion sets the version reported by /health.
func (s *Server) WithVersion(v string) *Server {
	s.version = v
	return s
}

// Start blocks serving on 127.0.0.1:port.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("brainlocker: listen %s: %w", addr, err)
	}
	s.log.Info("http server listening", "addr", addr)

	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return hs.Serve(ln)
}

// Handler returns the routed handler wrapped in request-id and access-log
// middleware.
func (s *Server) Handler() http.Handler {
	return requestID(accessLog(s.log, s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /stats", s.handleStats)

	s.mux.HandleFunc("GET /questions", s.handleListQuestions)
	s.mux.HandleFunc("POST /questions", s.handleAddQuestion)
	s.mux.HandleFunc("GET /questions/{id}", s.handleGetQuestion)
	s.mux.HandleFunc("DELETE /questions/{id}", s.handleDeleteQuestion)

	s.mux.HandleFunc("GET /topics", s.handleTopics)
	s.mux.HandleFunc("POST /topics", s.handleAddTopic)

	s.mux.HandleFunc("POST /import/preview", s.handleImportPreview)
	s.mux.HandleFunc("POST /import", s.handleImport)

	s.mux.HandleFunc("GET /profile", s.handleGetProfile)
	s.mux.HandleFunc("PUT /profile", s.handleSaveProfile)
	s.mux.HandleFunc("DELETE /profile", s.handleDeleteProfile)

	s.mux.HandleFunc("GET /export", s.handleExport)
}

// ─── Handlers ────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "brainlocker",
		"version": s.version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.internalError(w, r, "stats", err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOptions{
		Topic:  strings.TrimSpace(q.Get("topic")),
		Query:  strings.TrimSpace(q.Get("q")),
		Oldest: q.Get("sort") == "oldest",
		Limit:  queryInt(r, "limit", 0),
	}

	questions, err := s.store.ListQuestions(opts)
	if err != nil {
		s.internalError(w, r, "list questions", err)
		return
	}
	if questions == nil {
		questions = []store.Question{}
	}
	jsonResponse(w, http.StatusOK, questions)
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var form forms.Question
	if !decodeBody(w, r, &form) {
		return
	}
	if err := forms.ValidateQuestion(&form); err != nil {
		jsonError(w, http.StatusBadRequest, forms.Message(err, "invalid question"))
		return
	}

	id, err := s.store.AddQuestion(store.AddQuestionParams{
		TopicName: form.Topic,
		Question:  form.Question,
		Answer:    form.Answer,
	})
	if err != nil {
		s.internalError(w, r, "add question", err)
		return
	}

	q, err := s.store.GetQuestion(id)
	if err != nil {
		s.internalError(w, r, "add question", err)
		return
	}
	jsonResponse(w, http.StatusCreated, q)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q, err := s.store.GetQuestion(id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "question not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "get question", err)
		return
	}
	jsonResponse(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := s.store.DeleteQuestion(id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "question not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "delete question", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"id": id, "status": "deleted"})
}

type topicView struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.TopicStats()
	if err != nil {
		s.internalError(w, r, "topics", err)
		return
	}
	choices, err := s.store.TopicChoices()
	if err != nil {
		s.internalError(w, r, "topics", err)
		return
	}

	counts := make(map[string]int, len(stats))
	for _, ts := range stats {
		counts[ts.Name] = ts.Total
	}
	out := make([]topicView, 0, len(choices))
	for _, name := range choices {
		out = append(out, topicView{Name: name, Total: counts[name]})
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		jsonError(w, http.StatusBadRequest, "Please enter a topic name")
		return
	}

	id, err := s.store.AddTopic(name)
	if errors.Is(err, store.ErrTopicExists) {
		jsonError(w, http.StatusConflict, "topic already exists")
		return
	}
	if err != nil {
		s.internalError(w, r, "add topic", err)
		return
	}
	jsonResponse(w, http.StatusCreated, store.Topic{ID: id, Name: name})
}

type previewResponse struct {
	Items   []bulk.Item `json:"items"`
	Valid   int         `json:"valid"`
	Invalid int         `json:"invalid"`
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		jsonError(w, http.StatusBadRequest, "Please enter some questions and answers")
		return
	}

	items := bulk.Parse(body.Text)
	if items == nil {
		items = []bulk.Item{}
	}
	valid, invalid := bulk.Summary(items)
	jsonResponse(w, http.StatusOK, previewResponse{Items: items, Valid: valid, Invalid: invalid})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var form forms.BulkImport
	if !decodeBody(w, r, &form) {
		return
	}
	if err := forms.ValidateBulkImport(&form); err != nil {
		jsonError(w, http.StatusBadRequest, forms.Message(err, "invalid import"))
		return
	}

	items := bulk.Parse(form.Text)
	if len(items) == 0 {
		jsonError(w, http.StatusBadRequest, "Could not detect any questions in the provided text. Please check the format.")
		return
	}

	res, err := bulk.Import(s.store, form.Topic, items, s.log)
	if errors.Is(err, bulk.ErrNoValidItems) {
		jsonError(w, http.StatusBadRequest, "No valid questions to import")
		return
	}
	if err != nil {
		s.internalError(w, r, "import", err)
		return
	}
	jsonResponse(w, http.StatusCreated, res)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUser()
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "get profile", err)
		return
	}
	jsonResponse(w, http.StatusOK, u)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var form forms.Profile
	if !decodeBody(w, r, &form) {
		return
	}
	if err := forms.ValidateProfile(&form); err != nil {
		jsonError(w, http.StatusBadRequest, forms.Message(err, "invalid profile"))
		return
	}

	u, err := s.store.SaveUser(store.SaveUserParams{
		Name:      form.Name,
		Age:       form.Age,
		ClassName: form.ClassName,
		Email:     form.Email,
	})
	if err != nil {
		s.internalError(w, r, "save profile", err)
		return
	}
	jsonResponse(w, http.StatusOK, u)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(); err != nil {
		s.internalError(w, r, "delete profile", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExport returns the full backup as JSON, or a plain-text study sheet
// with ?format=text (optionally narrowed by ?topic=).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "", "json":
		data, err := s.store.Export()
		if err != nil {
			s.internalError(w, r, "export", err)
			return
		}
		jsonResponse(w, http.StatusOK, data)
	case "text":
		topic := strings.TrimSpace(r.URL.Query().Get("topic"))
		questions, err := s.store.ListQuestions(store.ListOptions{Topic: topic})
		if err != nil {
			s.internalError(w, r, "export", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(store.FormatStudySheet(questions, topic, time.Now())))
	default:
		jsonError(w, http.StatusBadRequest, "format must be json or text")
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.log.Error("request failed",
		"op", op,
		"request_id", w.Header().Get(requestIDHeader),
		"path", r.URL.Path,
		"error", err,
	)
	jsonError(w, http.StatusInternalServerError, "internal error")
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid question id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
