// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielhkuo/odr-frontend/auth"
	"github.com/danielhkuo/odr-frontend/cliparse"
	"github.com/danielhkuo/odr-frontend/db"
	"github.com/danielhkuo/odr-frontend/models"
)

// TestAPIURL is the remote API base used with httpmock
const TestAPIURL = "http://odr-api.test/api/v1"

// SetupTestDB opens a migrated in-memory SQLite database, closed on cleanup
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenWithDialector(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to ":memory:" is a separate database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return gdb
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:            3000,
		DatabaseURL:     "sqlite://memory",
		AuthSecret:      "test-auth-secret",
		PublicBaseURL:   "http://localhost:3000",
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		MaxUploadSize:   10 << 20,
		APIServiceURL:   TestAPIURL,
		APIRateLimit:    1000,
		UploadDir:       t.TempDir(),
		AppEnv:          "development",
		FeatureCacheTTL: 0,
	}
}

// CreateTestUser inserts an active user who has accepted the DCO
func CreateTestUser(t *testing.T, gdb *gorm.DB, email string, superuser bool) models.User {
	t.Helper()

	user := models.User{
		Email:       email,
		IsActive:    true,
		IsSuperuser: superuser,
		DCOAccepted: true,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestTeam inserts a team and returns it
func CreateTestTeam(t *testing.T, gdb *gorm.DB, name string) models.Team {
	t.Helper()

	team := models.Team{Name: name}
	if err := gdb.Create(&team).Error; err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}
	return team
}

// AddTestMember adds user to team with the given role
func AddTestMember(t *testing.T, gdb *gorm.DB, userID, teamID uint, role string) {
	t.Helper()

	if err := gdb.Create(&models.UserTeam{UserID: userID, TeamID: teamID, Role: role}).Error; err != nil {
		t.Fatalf("Failed to add team member: %v", err)
	}
}

// CreateTestContent inserts a pending image named name
func CreateTestContent(t *testing.T, gdb *gorm.DB, name string, fromUserID uint) models.Content {
	t.Helper()

	content := models.Content{
		Name:       name,
		Type:       models.ContentImage,
		Format:     "jpg",
		Status:     models.StatusPending,
		License:    models.DefaultLicense,
		LicenseURL: models.DefaultLicenseURL,
		Meta:       map[string]any{},
		URL:        []string{},
		FromUserID: &fromUserID,
	}
	if err := gdb.Create(&content).Error; err != nil {
		t.Fatalf("Failed to create test content: %v", err)
	}
	return content
}

// SessionCookies logs userID in and returns the resulting cookies
func SessionCookies(t *testing.T, sm *auth.SessionManager, userID uint) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	if _, err := sm.Login(t.Context(), w, httptest.NewRequest("GET", "/", nil), userID); err != nil {
		t.Fatalf("Failed to log in test user: %v", err)
	}
	return w.Result().Cookies()
}

// WithCookies adds cookies to req and returns it
func WithCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// AsUser attaches user to the request context the way the auth middleware does
func AsUser(req *http.Request, user models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), &user))
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a URL-encoded form request
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// MakeMultipartRequest creates a multipart request with one file and extra fields
func MakeMultipartRequest(t *testing.T, method, path, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
