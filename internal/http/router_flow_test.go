package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/http/middleware"
	"github.com/you/authsvc/internal/infrastructure/auth"
	"github.com/you/authsvc/internal/infrastructure/repositories"
	"github.com/you/authsvc/internal/mocks"
	"github.com/you/authsvc/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testStack struct {
	router   *gin.Engine
	users    domain.UserRepository
	verifier *mocks.MockIdentityVerifier
	redis    *miniredis.Miniredis
}

// newTestStack wires the full service over in-memory stores, with SMS
// delivery and the federated verifier stubbed out.
func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&repositories.DBUser{}, &repositories.DBCode{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService("flow-test-secret", "authsvc", time.Hour)
	verifier := mocks.NewMockIdentityVerifier()
	notifier := mocks.NewMockNotificationService()
	otpGen := services.NewOTPGenerator(otpRepo)
	throttle := services.NewOTPThrottle(redisClient, time.Minute)
	access := services.NewAccessService()

	authSvc := services.NewAuthService(
		userRepo, otpRepo, passwordSvc, tokenSvc, verifier,
		notifier, otpGen, throttle, true, zap.NewNop(),
	)
	userSvc := services.NewUserService(userRepo, passwordSvc)

	router := BuildRouter(
		handlers.NewAuthHandlers(authSvc),
		handlers.NewUserHandlers(userSvc),
		middleware.AuthMiddleware(tokenSvc),
		access,
	)

	return &testStack{router: router, users: userRepo, verifier: verifier, redis: mr}
}

func (s *testStack) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return payload
}

func registerAndLogin(t *testing.T, s *testStack, email, phone, password, role string) string {
	t.Helper()
	reg := fmt.Sprintf(`{"email":%q,"phone":%q,"password":%q,"role":%q}`, email, phone, password, role)
	if role == "" {
		reg = fmt.Sprintf(`{"email":%q,"phone":%q,"password":%q}`, email, phone, password)
	}
	if w := s.do(t, http.MethodPost, "/auth/register", reg, ""); w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	login := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	w := s.do(t, http.MethodPost, "/auth/login", login, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	token, _ := body(t, w)["access_token"].(string)
	if token == "" {
		t.Fatal("login returned no access token")
	}
	return token
}

func TestPasswordLoginFlow(t *testing.T) {
	s := newTestStack(t)

	token := registerAndLogin(t, s, "user@example.com", "+1234567890", "secret123", "")

	// Wrong password is a flat rejection.
	w := s.do(t, http.MethodPost, "/auth/login",
		`{"email":"user@example.com","password":"wrongpass"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := body(t, w)["error"]; msg != "Wrong Password" {
		t.Errorf("expected Wrong Password, got %v", msg)
	}

	// Duplicate registration conflicts.
	w = s.do(t, http.MethodPost, "/auth/register",
		`{"email":"user@example.com","phone":"+1999999999","password":"secret123"}`, "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate email, got %d", w.Code)
	}

	// The bearer token reaches the profile.
	w = s.do(t, http.MethodGet, "/auth/me", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("me failed: %d %s", w.Code, w.Body.String())
	}
	profile := body(t, w)
	if profile["email"] != "user@example.com" {
		t.Errorf("expected profile email, got %v", profile["email"])
	}
	if _, leaked := profile["password"]; leaked {
		t.Error("profile must not expose the password column")
	}

	// No token, no profile.
	if w := s.do(t, http.MethodGet, "/auth/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", w.Code)
	}
}

func TestOTPLoginFlow(t *testing.T) {
	s := newTestStack(t)
	registerAndLogin(t, s, "user@example.com", "+1234567890", "secret123", "")

	// Phase one returns the echoed code.
	w := s.do(t, http.MethodPost, "/auth/login_otp", `{"phone":"+1234567890"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("otp request failed: %d %s", w.Code, w.Body.String())
	}
	codeF, ok := body(t, w)["code"].(float64)
	if !ok {
		t.Fatalf("expected echoed code, got %s", w.Body.String())
	}
	code := int(codeF)
	if code < 1000 || code > 9999 {
		t.Fatalf("code %d outside [1000, 9999]", code)
	}

	// An immediate re-request is throttled.
	if w := s.do(t, http.MethodPost, "/auth/login_otp", `{"phone":"+1234567890"}`, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 inside the resend window, got %d", w.Code)
	}

	// After the window passes a second code can be issued; the first stays
	// outstanding and valid.
	s.redis.FastForward(2 * time.Minute)
	if w := s.do(t, http.MethodPost, "/auth/login_otp", `{"phone":"+1234567890"}`, ""); w.Code != http.StatusOK {
		t.Errorf("expected a fresh code after the window expired, got %d", w.Code)
	}

	// Phase two logs in with the first code.
	verify := fmt.Sprintf(`{"phone":"+1234567890","code":%d}`, code)
	w = s.do(t, http.MethodPost, "/auth/login_otp", verify, "")
	if w.Code != http.StatusOK {
		t.Fatalf("otp verify failed: %d %s", w.Code, w.Body.String())
	}
	if token, _ := body(t, w)["access_token"].(string); token == "" {
		t.Error("expected an access token")
	}

	// A consumed code cannot be replayed.
	w = s.do(t, http.MethodPost, "/auth/login_otp", verify, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on replay, got %d", w.Code)
	}
	if msg := body(t, w)["error"]; msg != "code is not valid" {
		t.Errorf("expected code is not valid, got %v", msg)
	}

	// Unknown phone never gets a code.
	if w := s.do(t, http.MethodPost, "/auth/login_otp", `{"phone":"+0000000000"}`, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown phone, got %d", w.Code)
	}
}

func TestGoogleLoginFlow(t *testing.T) {
	s := newTestStack(t)
	s.verifier.VerifyFunc = func(ctx context.Context, rawToken string) (*domain.ExternalIdentity, error) {
		if rawToken != "good-assertion" {
			return nil, fmt.Errorf("bad assertion")
		}
		return &domain.ExternalIdentity{
			Subject:    "google-subject-1",
			Email:      "person@example.com",
			GivenName:  "Ada",
			FamilyName: "Lovelace",
		}, nil
	}

	// First login provisions the account.
	w := s.do(t, http.MethodPost, "/auth/google", `{"credential":"good-assertion"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("google login failed: %d %s", w.Code, w.Body.String())
	}

	// Second login reuses it.
	w = s.do(t, http.MethodPost, "/auth/google", `{"credential":"good-assertion"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("repeat google login failed: %d %s", w.Code, w.Body.String())
	}

	users, err := s.users.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected a single provisioned account, got %d", len(users))
	}
	if users[0].Email != "person@example.com" || users[0].Role != domain.RoleUser {
		t.Errorf("unexpected provisioned account: %+v", users[0])
	}

	// A bad assertion is rejected without detail.
	w = s.do(t, http.MethodPost, "/auth/google", `{"credential":"forged"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad assertion, got %d", w.Code)
	}
	if msg := body(t, w)["error"]; msg != "Google authentication failed" {
		t.Errorf("expected opaque message, got %v", msg)
	}
}

func TestRoleGuardedRoutes(t *testing.T) {
	s := newTestStack(t)

	userToken := registerAndLogin(t, s, "user@example.com", "+1234567890", "secret123", "")
	adminToken := registerAndLogin(t, s, "admin@example.com", "+1999999999", "secret123", "admin")
	superToken := registerAndLogin(t, s, "super@example.com", "+1888888888", "secret123", "super_admin")

	tests := []struct {
		name           string
		method         string
		path           string
		reqBody        string
		token          string
		expectedStatus int
	}{
		{"unauthenticated list", http.MethodGet, "/users", "", "", http.StatusUnauthorized},
		{"plain user denied list", http.MethodGet, "/users", "", userToken, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/users", "", adminToken, http.StatusOK},
		{"super_admin lists users", http.MethodGet, "/users", "", superToken, http.StatusOK},
		{"plain user reads an account", http.MethodGet, "/users/1", "", userToken, http.StatusOK},
		{"plain user updates an account", http.MethodPatch, "/users/1", `{"first_name":"New"}`, userToken, http.StatusOK},
		{"plain user denied delete", http.MethodDelete, "/users/1", "", userToken, http.StatusForbidden},
		{"admin denied admins list", http.MethodGet, "/users/admins/list", "", adminToken, http.StatusForbidden},
		{"super_admin reads admins list", http.MethodGet, "/users/admins/list", "", superToken, http.StatusOK},
		{"plain user denied create", http.MethodPost, "/users",
			`{"email":"x@example.com","phone":"+1777777777","password":"secret123"}`, userToken, http.StatusForbidden},
		{"admin creates an account", http.MethodPost, "/users",
			`{"email":"x@example.com","phone":"+1777777777","password":"secret123"}`, adminToken, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.reqBody, tt.token)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	// The admins listing carries only administrative roles.
	w := s.do(t, http.MethodGet, "/users/admins/list", "", superToken)
	var admins []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &admins); err != nil {
		t.Fatalf("failed to decode admins list: %v", err)
	}
	if len(admins) != 2 {
		t.Fatalf("expected 2 administrative accounts, got %d", len(admins))
	}
	for _, a := range admins {
		if a["role"] != domain.RoleAdmin && a["role"] != domain.RoleSuperAdmin {
			t.Errorf("unexpected role in admins list: %v", a["role"])
		}
	}
}

func TestDeleteUserFlow(t *testing.T) {
	s := newTestStack(t)

	registerAndLogin(t, s, "user@example.com", "+1234567890", "secret123", "")
	adminToken := registerAndLogin(t, s, "admin@example.com", "+1999999999", "secret123", "admin")

	w := s.do(t, http.MethodDelete, "/users/1", "", adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", w.Code, w.Body.String())
	}
	if msg := body(t, w)["message"]; msg != "User successfully deleted" {
		t.Errorf("expected delete message, got %v", msg)
	}

	// Deleting again reports the account missing.
	if w := s.do(t, http.MethodDelete, "/users/1", "", adminToken); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on repeat delete, got %d", w.Code)
	}
}
