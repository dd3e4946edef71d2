// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/missionhub/internal/app/store/users"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/auth"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/validate"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler holds dependencies for email+password sign-in.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin verifies email+password and starts a session. The same 401
// comes back for an unknown email and a wrong password.
// POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments {
		apierrors.Unauthorized(w)
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading user", err, "Sign-in failed.")
		return
	}
	if len(u.PasswordHash) == 0 ||
		bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		apierrors.Unauthorized(w)
		return
	}

	err = auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
	if err != nil {
		apierrors.Internal(w, h.Log, "failed to write session", err, "Sign-in failed.")
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	webjson.Write(w, http.StatusOK, map[string]string{
		"user_id":   u.ID.Hex(),
		"full_name": u.FullName,
		"role":      u.Role,
	})
}

// HandleLogout clears the session.
// POST /logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		apierrors.Internal(w, h.Log, "failed to clear session", err, "Sign-out failed.")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]bool{"signed_out": true})
}
