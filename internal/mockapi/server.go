// ABOUTME: In-process fake of the report backend for tests and local demos
// ABOUTME: chi router serving login, profile, refresh, report, and log endpoints with JWTs

package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/markalston/fieldreport/internal/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	// DefaultPageSize matches the backend's log page size
	DefaultPageSize = 10
)

// Claims are the JWT claims issued by the fake backend
type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type account struct {
	password string
	profile  models.UserProfile
}

type failure struct {
	status int
	detail string
}

// Server is a fake report backend. The zero value is not usable; call New.
type Server struct {
	mu         sync.Mutex
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	pageSize   int
	pinnedNext int
	accounts   map[string]account
	logs       []models.LogEntry
	reports    [][]string
	failures   map[string]failure
	hits       map[string]int
}

// Option configures a Server
type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithPageSize sets the number of log entries per page
func WithPageSize(n int) Option {
	return func(s *Server) { s.pageSize = n }
}

// WithPinnedNext makes every log page link to page n as its next page,
// the way a misbehaving backend can
func WithPinnedNext(n int) Option {
	return func(s *Server) { s.pinnedNext = n }
}

// New creates an empty fake backend
func New(opts ...Option) *Server {
	s := &Server{
		secret:     []byte(uuid.NewString()),
		accessTTL:  5 * time.Minute,
		refreshTTL: 24 * time.Hour,
		pageSize:   DefaultPageSize,
		accounts:   make(map[string]account),
		failures:   make(map[string]failure),
		hits:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves the fake backend on a loopback listener
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Router())
}

// AddUser registers an account. A missing profile UUID is generated.
func (s *Server) AddUser(password string, profile models.UserProfile) models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile.UUID == "" {
		profile.UUID = uuid.NewString()
	}
	s.accounts[profile.Username] = account{password: password, profile: profile}
	return profile
}

// AddLog appends a log entry. A missing UUID is generated.
func (s *Server) AddLog(entry models.LogEntry) models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.UUID == "" {
		entry.UUID = uuid.NewString()
	}
	s.logs = append(s.logs, entry)
	return entry
}

// Reports returns the image lists received by /sent-report, in order
func (s *Server) Reports() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.reports))
	for i, r := range s.reports {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Hits returns how many requests reached path
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Fail makes every request to path answer with status and detail.
// An empty detail sends a body without a "detail" field.
func (s *Server) Fail(path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, detail: detail}
}

// Recover removes an injected failure
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// IssueToken signs a token for username; used by tests to plant
// expired or foreign credentials
func (s *Server) IssueToken(username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Router builds the chi router for the fake backend
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countHits, s.injectFailures)

	r.Post("/userlogin", s.handleLogin)
	r.Post("/token/refresh", s.handleRefresh)

	r.With(s.authMiddleware).Get("/get-data", s.handleGetData)
	r.With(s.authMiddleware).Post("/sent-report", s.handleSentReport)
	r.Route("/get-logs", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListLogs)
		r.Get("/{logID}", s.handleGetLog)
	})

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type reportRequest struct {
	Images []string `json:"images"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || acct.password != req.Password {
		writeError(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := s.IssueToken(req.Username, TokenTypeAccess, s.accessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	refresh, err := s.IssueToken(req.Username, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access, Refresh: refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	claims, err := s.parseToken(req.Refresh, TokenTypeRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	access, err := s.IssueToken(claims.Username, TokenTypeAccess, s.accessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	writeJSON(w, http.StatusOK, models.AccessToken{Access: access})
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	s.mu.Lock()
	acct, ok := s.accounts[claims.Username]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acct.profile)
}

func (s *Server) handleSentReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	if len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, "No images provided.")
		return
	}

	claims := claimsFromContext(r.Context())
	now := time.Now().UTC().Format(time.RFC3339)
	attachments := make([]models.Attachment, len(req.Images))
	for i := range req.Images {
		attachments[i] = models.Attachment{Image: fmt.Sprintf("/media/reports/%d.jpg", i+1)}
	}

	s.mu.Lock()
	acct := s.accounts[claims.Username]
	entry := models.LogEntry{
		UUID:    uuid.NewString(),
		Subject: fmt.Sprintf("Report from %s", acct.profile.FullName()),
		User: models.LogUser{
			FirstName: acct.profile.FirstName,
			LastName:  acct.profile.LastName,
			Username:  acct.profile.Username,
			Email:     acct.profile.Email,
			Mobile:    acct.profile.Mobile,
		},
		SentAt:      now,
		SendTime:    now,
		Status:      models.StatusSent,
		Attachments: attachments,
	}
	s.reports = append(s.reports, append([]string(nil), req.Images...))
	// Newest first, as the backend lists them
	s.logs = append([]models.LogEntry{entry}, s.logs...)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Report sent successfully",
		"uuid":    entry.UUID,
		"images":  len(req.Images),
	})
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusNotFound, "Invalid page.")
			return
		}
		page = n
	}

	s.mu.Lock()
	total := len(s.logs)
	start := (page - 1) * s.pageSize
	if start > 0 && start >= total {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Invalid page.")
		return
	}
	end := min(start+s.pageSize, total)
	results := append([]models.LogEntry{}, s.logs[start:end]...)
	s.mu.Unlock()

	resp := models.LogPage{Count: total, Results: results}
	switch {
	case s.pinnedNext > 0:
		next := pageURL(r, s.pinnedNext)
		resp.Next = &next
	case end < total:
		next := pageURL(r, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		resp.Previous = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "logID")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.logs {
		if entry.UUID == id {
			writeJSON(w, http.StatusOK, entry)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Not found.")
}

func (s *Server) parseToken(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != tokenType {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := s.parseToken(token, TokenTypeAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if f.detail == "" {
			writeJSON(w, f.status, map[string]string{})
			return
		}
		writeError(w, f.status, f.detail)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func pageURL(r *http.Request, page int) string {
	return fmt.Sprintf("http://%s/get-logs?page=%d", r.Host, page)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends the backend's {"detail": ...} error shape
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
