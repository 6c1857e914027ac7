package devserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
	"github.com/justestif/moodmuse/internal/store"
)

const (
	defaultLimit         = 20
	maxLimit             = 100
	defaultActivityLimit = 10
)

// Handlers contains the HTTP handlers of the development backend.
type Handlers struct {
	store   store.Store
	catalog *Catalog
	tokens  *TokenIssuer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st store.Store, catalog *Catalog, tokens *TokenIssuer) *Handlers {
	return &Handlers{
		store:   st,
		catalog: catalog,
		tokens:  tokens,
	}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userMetadata struct {
	Name string `json:"name,omitempty"`
}

type authResponse struct {
	Message      string        `json:"message"`
	User         string        `json:"user"`
	UserID       string        `json:"user_id"`
	UserMetadata *userMetadata `json:"user_metadata,omitempty"`
	AccessToken  string        `json:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
}

// Register creates an account (POST /auth/register).
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes.
		writeError(w, http.StatusBadRequest, "Registration failed")
		return
	}

	u := &store.User{Name: strings.TrimSpace(req.Name), Email: req.Email, PasswordHash: hash}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusBadRequest, "User already registered")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("creating user")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", u.ID).Msg("user registered")
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully!",
		User:    u.Email,
		UserID:  u.ID,
	})
}

// Login verifies credentials and issues tokens (POST /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("loading user")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tok, err := h.tokens.Issue(u)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("issuing token")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	resp := authResponse{
		Message:      "Login successful!",
		User:         u.Email,
		UserID:       u.ID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if u.Name != "" {
		resp.UserMetadata = &userMetadata{Name: u.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the caller's refresh tokens (POST /auth/logout). It
// succeeds without a token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := claimsFrom(r.Context()); claims != nil {
		n := h.tokens.Revoke(claims.Subject)
		logging.Ctx(r.Context()).Info().Str("user_id", claims.Subject).Int("revoked", n).Msg("user logged out")
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type recommendRequest struct {
	Mood        string            `json:"mood"`
	Text        string            `json:"text"`
	ContentType model.ContentType `json:"content_type"`
	Language    string            `json:"language"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	UserID      model.FlexString  `json:"user_id"`
}

type recommendResponse struct {
	Mood    string       `json:"mood"`
	Count   int          `json:"count"`
	Page    int          `json:"page"`
	Results []model.Item `json:"results"`
}

// Recommend returns one page of catalog items for a mood (POST /home/).
// Without a mood the mood is inferred from the text.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		m  mood.Mood
		ok bool
	)
	switch {
	case strings.TrimSpace(req.Mood) != "":
		if m, ok = mood.Lookup(req.Mood); !ok {
			writeError(w, http.StatusNotFound, "Mood not found in DB")
			return
		}
	case strings.TrimSpace(req.Text) != "":
		m, ok = mood.FromText(req.Text)
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Mood not recognized")
		return
	}

	ct := req.ContentType
	if ct == "" {
		ct = model.Movies
	}
	if !ct.Valid() {
		writeError(w, http.StatusBadRequest, "Unsupported content type")
		return
	}

	page := max(req.Page, 1)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	results := h.catalog.Find(m.ID, ct, strings.TrimSpace(req.Language), page, limit)

	logging.Ctx(r.Context()).Debug().
		Str("mood", m.Name).
		Str("content_type", string(ct)).
		Str("language", req.Language).
		Int("page", page).
		Int("count", len(results)).
		Msg("recommendations served")

	writeJSON(w, http.StatusOK, recommendResponse{
		Mood:    m.Name,
		Count:   len(results),
		Page:    page,
		Results: results,
	})
}

type activityResponse struct {
	LogID     string `json:"log_id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Mood      string `json:"mood"`
	CreatedAt string `json:"created_at"`
}

func toActivityResponse(a model.Activity) activityResponse {
	return activityResponse{
		LogID:     a.ID,
		UserID:    a.UserID,
		Action:    a.Action,
		Mood:      a.Mood,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// RecentActivity lists a user's latest activities
// (GET /home/get_recent_activity?user_id=&limit=).
func (h *Handlers) RecentActivity(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := defaultActivityLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	acts, err := h.store.RecentActivities(r.Context(), userID, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("loading activities")
		writeError(w, http.StatusInternalServerError, "Failed to load recent activity")
		return
	}

	out := make([]activityResponse, 0, len(acts))
	for _, a := range acts {
		out = append(out, toActivityResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}

type logActivityRequest struct {
	UserID model.FlexString `json:"user_id"`
	Action string           `json:"action"`
	Mood   string           `json:"mood"`
}

// LogActivity stores one activity and echoes it (POST /home/log_activity).
func (h *Handlers) LogActivity(w http.ResponseWriter, r *http.Request) {
	var req logActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.Action) == "" {
		writeError(w, http.StatusBadRequest, "user_id and action are required")
		return
	}

	a := model.Activity{
		UserID: string(req.UserID),
		Action: strings.TrimSpace(req.Action),
		Mood:   strings.TrimSpace(req.Mood),
	}
	if err := h.store.AddActivity(r.Context(), &a); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("storing activity")
		writeError(w, http.StatusInternalServerError, "Failed to log activity")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"activity": toActivityResponse(a)})
}

// Health reports liveness (GET /).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Backend running successfully!"})
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type claimsKey struct{}

func withClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}
