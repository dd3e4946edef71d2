package login_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/missionhub/internal/app/features/login"
	"github.com/dalemusser/missionhub/internal/domain/models"
	"github.com/dalemusser/missionhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func createUserWithPassword(t *testing.T, f *testutil.Fixtures, email, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     "Login User",
		FullNameCI:   text.Fold("Login User"),
		Email:        email,
		EmailCI:      text.Fold(email),
		Role:         models.RoleAdmin,
		Status:       "active",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.DB().Collection("users").InsertOne(ctx, u); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func TestHandleLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	testutil.InitTestSessionStore(t)
	h := login.NewHandler(db, zap.NewNop())

	u := createUserWithPassword(t, fixtures, "admin@example.com", "correct horse battery")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "Admin@Example.com", // lookup is case-insensitive
		"password": "correct horse battery",
	})
	rec := testutil.NewRecorder()

	h.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	var resp map[string]string
	rec.DecodeJSON(t, &resp)
	if resp["user_id"] != u.ID.Hex() {
		t.Errorf("user_id: got %q, want %q", resp["user_id"], u.ID.Hex())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	testutil.InitTestSessionStore(t)
	h := login.NewHandler(db, zap.NewNop())

	createUserWithPassword(t, fixtures, "admin2@example.com", "right password")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "admin2@example.com",
		"password": "wrong password",
	})
	rec := testutil.NewRecorder()

	h.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleLogin_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.InitTestSessionStore(t)
	h := login.NewHandler(db, zap.NewNop())

	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	rec := testutil.NewRecorder()

	h.HandleLogin(rec.ResponseRecorder, req)

	// Same response as a wrong password, so callers can't probe for emails.
	rec.AssertStatus(t, http.StatusUnauthorized)
}
