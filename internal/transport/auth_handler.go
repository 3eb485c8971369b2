package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trailhaven/internal/domain"
	"trailhaven/internal/middleware"
	"trailhaven/internal/repository"
	"trailhaven/internal/service"
	"trailhaven/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventBufferSize = 16
	sseHeartbeat    = 15 * time.Second
)

// SignUpRequest represents the sign-up request payload
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh and logout payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SessionResponse represents the login and refresh response
type SessionResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         UserProfile `json:"user"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

func profileOf(user *domain.User) UserProfile {
	return UserProfile{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Phone: user.Phone,
		Role:  string(user.Role),
	}
}

// AuthHandler handles HTTP requests for sign-up, sign-in and session state
type AuthHandler struct {
	authService service.AuthService
	sessions    *session.Store
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, sessions *session.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/signup", h.SignUp)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
		})

		// A missing or bad token yields a null user here, not a 401
		r.Get("/me", h.Me)
		r.Get("/profile", h.Profile)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/session", h.Session)
			r.Get("/events", h.Events)
		})
	})
}

// decode reads and validates the body, writing the 400 response itself on
// failure
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}, action string) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug(action+" validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// SignUp handles account creation
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.decode(w, r, &req, "Sign-up") {
		return
	}

	user, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			h.logger.Debug("Sign-up rejected, email taken")
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}

		h.logger.Error("Sign-up failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("User signed up", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, profileOf(user))
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req, "Login") {
		return
	}

	sess, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Debug("Login failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("User logged in", zap.String("user_id", sess.User.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, sessionResponse(sess))
}

// Refresh handles access token renewal
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req, "Refresh") {
		return
	}

	sess, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
		case errors.Is(err, service.ErrTokenExpired):
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
		default:
			h.logger.Error("Token refresh failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sessionResponse(sess))
}

// Logout revokes the refresh token in the body
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req, "Logout") {
		return
	}

	if err := h.authService.SignOut(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Me returns the identity behind the bearer token, or a null user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]*service.AuthUser{
		"user": h.authService.CurrentUser(r.Context(), token),
	})
}

// Profile returns the profile row of the current user, or a null user
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	user := h.authService.Profile(r.Context(), token)
	if user == nil {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]*UserProfile{"user": nil})
		return
	}

	profile := profileOf(user)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]*UserProfile{"user": &profile})
}

// Session returns the latest known session state of the caller
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	state, found := h.sessions.Get(userID)
	if !found {
		state = session.State{UserID: userID}
	}
	middleware.RespondWithJSON(w, http.StatusOK, state)
}

// Events streams the caller's auth-state changes as server-sent events
// until the client goes away
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	events := make(chan session.Event, eventBufferSize)
	unsubscribe := h.authService.OnAuthStateChange(func(e session.Event) {
		if e.UserID != userID {
			return
		}
		select {
		case events <- e:
		default:
			h.logger.Warn("Dropping auth event for slow client",
				zap.String("user_id", userID.String()),
				zap.String("event", string(e.Type)),
			)
		}
	})
	defer unsubscribe()

	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error("Streaming unsupported", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case e := <-events:
			payload, err := json.Marshal(e)
			if err != nil {
				h.logger.Error("Failed to encode auth event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, payload); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *AuthHandler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.logger.Debug("Invalid user ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}

func sessionResponse(sess *service.Session) SessionResponse {
	return SessionResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		User:         profileOf(sess.User),
	}
}
