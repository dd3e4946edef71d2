// internal/app/features/users/users.go
package users

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/missionhub/internal/app/store/users"
	"github.com/dalemusser/missionhub/internal/app/system/apierrors"
	"github.com/dalemusser/missionhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/missionhub/internal/app/system/timeouts"
	"github.com/dalemusser/missionhub/internal/app/system/validate"
	"github.com/dalemusser/missionhub/internal/app/system/webjson"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// createUserRequest is the payload for POST /users. Password is only
// meaningful for admins, who sign in with email+password.
type createUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin mentor student"`
	Password string `json:"password" validate:"omitempty,min=10"`
}

// HandleCreateUser creates a user. A duplicate email is a CONFLICT.
// POST /users
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := webjson.Decode(r, &req); err != nil {
		apierrors.Validation(w, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		apierrors.Validation(w, err.Error(), nil)
		return
	}
	if req.Role == models.RoleAdmin && req.Password == "" {
		apierrors.Validation(w, "admins require a password", nil)
		return
	}

	u := models.User{
		FullName: htmlsanitize.Clean(req.FullName),
		Email:    req.Email,
		Role:     req.Role,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			apierrors.Internal(w, h.Log, "bcrypt failure", err, "Failed to create user.")
			return
		}
		u.PasswordHash = hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := userstore.New(h.DB).Create(ctx, u)
	if err == userstore.ErrDuplicateEmail {
		apierrors.Conflict(w, err.Error())
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error creating user", err, "Failed to create user.")
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role))
	webjson.Write(w, http.StatusCreated, created)
}

// HandleListUsers lists users, optionally filtered by ?role=.
// GET /users
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" {
		if err := validate.Var(role, "oneof=admin mentor student"); err != nil {
			apierrors.Validation(w, "invalid role", nil)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := userstore.New(h.DB).ListByRole(ctx, role)
	if err != nil {
		apierrors.Internal(w, h.Log, "database error listing users", err, "Failed to list users.")
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

// HandleGetUser returns one user.
// GET /users/{id}
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.Validation(w, "invalid user id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		apierrors.NotFound(w, "User not found.")
		return
	}
	if err != nil {
		apierrors.Internal(w, h.Log, "database error loading user", err, "Failed to load user.")
		return
	}
	webjson.Write(w, http.StatusOK, u)
}
