package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nattapon/inkwell/internal/models"
	"github.com/nattapon/inkwell/internal/store"
)

// Sessions defines the interface for session issuance and teardown.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc      *Service
	sessions Sessions
}

func NewHandler(svc *Service, sessions Sessions) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"name, email, and password are required"}`, http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			http.Error(w, `{"error":"an account with this email already exists"}`, http.StatusConflict)
			return
		}
		log.Printf("register error: %v", err)
		http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, `{"error":"invalid email or password"}`, http.StatusUnauthorized)
			return
		}
		log.Printf("login error: %v", err)
		http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
		return
	}

	sid, err := h.sessions.Create(r.Context(), user.ID.Hex())
	if err != nil {
		log.Printf("session create error: %v", err)
		http.Error(w, `{"error":"session creation failed"}`, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// Logout destroys the current session. Safe to call without one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		h.sessions.Delete(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"logged out"}`))
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.svc.GetUser(r.Context(), oid)
	if err != nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// ForgotPassword starts the reset flow. The response is the same for
// known and unknown emails so the endpoint can't be used to probe which
// addresses have accounts.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, `{"error":"email is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// fall through to the generic response below
		case errors.Is(err, ErrNotificationFailed):
			log.Printf("forgot-password: %v", err)
			http.Error(w, `{"error":"could not send reset email, try again"}`, http.StatusBadGateway)
			return
		default:
			log.Printf("forgot-password: %v", err)
			http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"if that email is registered, a reset link has been sent"}`))
}

// ValidateResetToken checks a reset link before the frontend shows the
// new-password form.
func (h *Handler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.svc.ValidateResetToken(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			http.Error(w, `{"error":"link expired or invalid, try again"}`, http.StatusNotFound)
			return
		}
		log.Printf("validate reset token: %v", err)
		http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// ResetPassword consumes the token and stores the new password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.svc.CompleteReset(r.Context(), req.Token, req.NewPassword, req.ConfirmNewPassword); err != nil {
		switch {
		case errors.Is(err, ErrPasswordMismatch):
			http.Error(w, `{"error":"passwords do not match"}`, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidToken):
			http.Error(w, `{"error":"link expired or invalid, try again"}`, http.StatusNotFound)
		default:
			log.Printf("reset-password: %v", err)
			http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"password reset successfully"}`))
}
