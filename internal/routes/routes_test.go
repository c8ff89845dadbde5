package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/config"
	"github.com/oncoverse/oncoverse/internal/logging"
	"github.com/oncoverse/oncoverse/internal/respond"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		AppName:         "oncoverse-test",
		AppEnv:          "test",
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		OTPTTL:          time.Minute,
		ResetOTPTTL:     5 * time.Minute,
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		MaxUploadBytes:  1 << 20,
		MaxUploadFiles:  10,
	}
	app := fiber.New(fiber.Config{ErrorHandler: respond.ErrorHandler(logging.Discard())})
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return resp, parsed
}

func dataField(t *testing.T, parsed map[string]any, keys ...string) any {
	t.Helper()
	current, ok := parsed["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data in %v", parsed)
	}
	for i, key := range keys {
		if i == len(keys)-1 {
			return current[key]
		}
		current, ok = current[key].(map[string]any)
		if !ok {
			t.Fatalf("missing %s in %v", key, parsed)
		}
	}
	return nil
}

func TestRegistrationEndToEnd(t *testing.T) {
	app := newTestApp(t)

	resp, parsed := postJSON(t, app, "/api/v1/register", "", fiber.Map{
		"fullName": "A Patient",
		"email":    "a@x.com",
		"phone":    "+911234567890",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", resp.StatusCode, parsed)
	}
	emailCode, _ := dataField(t, parsed, "otpForEmail").(string)
	phoneCode, _ := dataField(t, parsed, "otpForPhone").(string)
	if len(emailCode) != 6 || len(phoneCode) != 6 {
		t.Fatalf("expected 6-digit codes, got %q %q", emailCode, phoneCode)
	}

	verifyBody := fiber.Map{
		"email": "a@x.com",
		"phone": "+911234567890",
		"otp": fiber.Map{
			"otpForEmail": emailCode,
			"otpForPhone": phoneCode,
		},
	}
	resp, parsed = postJSON(t, app, "/api/v1/verify-otp", "", verifyBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("verify: expected 201, got %d (%v)", resp.StatusCode, parsed)
	}
	if verified, _ := dataField(t, parsed, "user", "isVerified").(bool); !verified {
		t.Fatalf("expected verified user, got %v", parsed)
	}
	tokenStr, _ := dataField(t, parsed, "token").(string)
	if tokenStr == "" {
		t.Fatalf("expected session token, got %v", parsed)
	}

	// The codes are consumed: replaying the verification fails.
	resp, _ = postJSON(t, app, "/api/v1/verify-otp", "", verifyBody)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("replayed verify: expected 404, got %d", resp.StatusCode)
	}

	// The token opens the profile surface.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/get-profile", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tokenStr)
	profileResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profileResp.StatusCode != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", profileResp.StatusCode)
	}

	// Duplicate registration conflicts.
	resp, _ = postJSON(t, app, "/api/v1/register", "", fiber.Map{
		"fullName": "B Patient",
		"email":    "a@x.com",
		"phone":    "+919999999999",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}
}

func TestSetPasswordAndLoginEndToEnd(t *testing.T) {
	app := newTestApp(t)

	_, parsed := postJSON(t, app, "/api/v1/register", "", fiber.Map{
		"fullName": "A Patient",
		"email":    "a@x.com",
		"phone":    "+911234567890",
	})
	emailCode, _ := dataField(t, parsed, "otpForEmail").(string)
	phoneCode, _ := dataField(t, parsed, "otpForPhone").(string)

	_, parsed = postJSON(t, app, "/api/v1/verify-otp", "", fiber.Map{
		"email": "a@x.com",
		"phone": "+911234567890",
		"otp":   fiber.Map{"otpForEmail": emailCode, "otpForPhone": phoneCode},
	})
	tokenStr, _ := dataField(t, parsed, "token").(string)

	resp, parsed := postJSON(t, app, "/api/v1/set-password", tokenStr, fiber.Map{
		"password": "Password@123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("set password: expected 201, got %d (%v)", resp.StatusCode, parsed)
	}

	resp, parsed = postJSON(t, app, "/api/v1/login", "", fiber.Map{
		"type":     "email",
		"email":    "a@x.com",
		"password": "Password@123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", resp.StatusCode, parsed)
	}

	// A weak password never reaches the workflow.
	resp, _ = postJSON(t, app, "/api/v1/set-password", tokenStr, fiber.Map{
		"password": "weak",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password: expected 400, got %d", resp.StatusCode)
	}
}

func TestResetTokenOnlyOpensSetPassword(t *testing.T) {
	app := newTestApp(t)

	_, parsed := postJSON(t, app, "/api/v1/register", "", fiber.Map{
		"fullName": "A Patient",
		"email":    "a@x.com",
		"phone":    "+911234567890",
	})
	emailCode, _ := dataField(t, parsed, "otpForEmail").(string)
	phoneCode, _ := dataField(t, parsed, "otpForPhone").(string)
	_, parsed = postJSON(t, app, "/api/v1/verify-otp", "", fiber.Map{
		"email": "a@x.com",
		"phone": "+911234567890",
		"otp":   fiber.Map{"otpForEmail": emailCode, "otpForPhone": phoneCode},
	})
	accessToken, _ := dataField(t, parsed, "token").(string)
	resp, parsed := postJSON(t, app, "/api/v1/set-password", accessToken, fiber.Map{
		"password": "OldPass@123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("set initial password: expected 201, got %d (%v)", resp.StatusCode, parsed)
	}

	_, parsed = postJSON(t, app, "/api/v1/forgot-password", "", fiber.Map{"email": "a@x.com"})
	resetCode, _ := dataField(t, parsed, "otp").(string)
	resp, parsed = postJSON(t, app, "/api/v1/verify-otp-forgot-password", "", fiber.Map{
		"email": "a@x.com",
		"otp":   resetCode,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("verify reset otp: expected 201, got %d (%v)", resp.StatusCode, parsed)
	}
	resetToken, _ := dataField(t, parsed, "token").(string)
	if resetToken == "" {
		t.Fatalf("expected reset token, got %v", parsed)
	}

	// The reset token opens nothing but set-password.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/get-profile", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+resetToken)
	profileResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profileResp.StatusCode != http.StatusForbidden {
		t.Fatalf("reset token on get-profile: expected 403, got %d", profileResp.StatusCode)
	}

	resp, parsed = postJSON(t, app, "/api/v1/set-password", resetToken, fiber.Map{
		"password": "NewPass@123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("set password with reset token: expected 201, got %d (%v)", resp.StatusCode, parsed)
	}

	resp, _ = postJSON(t, app, "/api/v1/login", "", fiber.Map{
		"type":     "email",
		"email":    "a@x.com",
		"password": "NewPass@123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/get-profile"},
		{http.MethodPost, "/api/v1/complete-profile"},
		{http.MethodPost, "/api/v1/set-password"},
		{http.MethodPost, "/api/v1/upload"},
		{http.MethodGet, "/api/v1/admin/patient-list"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestPatientTokenRejectedOnAdminSurface(t *testing.T) {
	app := newTestApp(t)

	_, parsed := postJSON(t, app, "/api/v1/register", "", fiber.Map{
		"fullName": "A Patient",
		"email":    "a@x.com",
		"phone":    "+911234567890",
	})
	emailCode, _ := dataField(t, parsed, "otpForEmail").(string)
	phoneCode, _ := dataField(t, parsed, "otpForPhone").(string)
	_, parsed = postJSON(t, app, "/api/v1/verify-otp", "", fiber.Map{
		"email": "a@x.com",
		"phone": "+911234567890",
		"otp":   fiber.Map{"otpForEmail": emailCode, "otpForPhone": phoneCode},
	})
	tokenStr, _ := dataField(t, parsed, "token").(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/patient-list", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tokenStr)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("patient token on admin surface: expected 401, got %d", resp.StatusCode)
	}
}

func TestValidationErrors(t *testing.T) {
	app := newTestApp(t)

	resp, parsed := postJSON(t, app, "/api/v1/register", "", fiber.Map{
		"fullName": "A",
		"email":    "not-an-email",
		"phone":    "12345",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if success, _ := parsed["success"].(bool); success {
		t.Fatalf("expected failure envelope, got %v", parsed)
	}
	if _, ok := parsed["data"].(map[string]any)["errors"]; !ok {
		t.Fatalf("expected field errors in %v", parsed)
	}
}

func TestPingAndHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
}
