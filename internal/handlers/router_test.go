package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/ecoclean/backend/internal/middleware"
	"github.com/ecoclean/backend/internal/services"
	"github.com/ecoclean/backend/internal/storage"
)

const (
	testJWTSecret     = "test-secret"
	testAdminEmail    = "admin@ecoclean.app"
	testAdminPassword = "change-me"
)

// classifierStubServer is a controllable stand-in for the external vision
// classifier. Tests set the next response; the zero value answers with a
// confident bin_disposal match.
type classifierStubServer struct {
	mu   sync.Mutex
	resp map[string]interface{}
}

func (c *classifierStubServer) set(matches bool, confidence float64, category, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resp = map[string]interface{}{
		"isWasteAction": matches,
		"confidence":    confidence,
		"type":          category,
		"description":   description,
	}
}

func (c *classifierStubServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	resp := c.resp
	c.mu.Unlock()
	if resp == nil {
		resp = map[string]interface{}{
			"isWasteAction": true,
			"confidence":    0.95,
			"type":          services.CategoryBinDisposal,
			"description":   "stub",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type testEnv struct {
	router      http.Handler
	classifier  *classifierStubServer
	users       *services.UserService
	submissions *services.SubmissionService
	verify      *services.VerifyService
}

// newTestEnv wires the full API the way the server binary does, backed by a
// temp-dir store, seeded data and a stub classifier.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	classifier := &classifierStubServer{}
	classifierServer := httptest.NewServer(classifier)
	t.Cleanup(classifierServer.Close)

	users := services.NewUserService(store, testAdminEmail, testAdminPassword)
	submissions := services.NewSubmissionService(store)
	verify := services.NewVerifyService(classifierServer.URL, "test-key")
	progression := services.NewProgressionService(users)
	leaderboard := services.NewLeaderboardService(users, nil)

	require.NoError(t, users.Seed(ctx))
	require.NoError(t, submissions.Seed(ctx))

	authHandler := NewAuthHandler(users, testJWTSecret, time.Hour)
	scanHandler := NewScanHandler(submissions, users, verify, progression)
	submissionHandler := NewSubmissionHandler(submissions, users, verify, progression, nil)
	leaderboardHandler := NewLeaderboardHandler(leaderboard)
	adminHandler := NewAdminHandler(submissions, users, verify)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(testJWTSecret))

			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)

			r.Get("/bins", submissionHandler.ListBins)
			r.Get("/bins/{binId}/map-link", submissionHandler.BinMapLink)

			r.Post("/scan/decode", scanHandler.DecodeBin)
			r.Post("/scan/geofence", scanHandler.Geofence)
			r.Post("/scan/disposal", scanHandler.Disposal)

			r.Post("/reports", submissionHandler.Report)
			r.Post("/bins/suggest", submissionHandler.SuggestBin)

			r.Get("/leaderboard", leaderboardHandler.List)

			r.Route("/admin", func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin)

				r.Get("/submissions", adminHandler.ListSubmissions)
				r.Post("/submissions/{submissionId}/approve", adminHandler.Approve)
				r.Post("/submissions/{submissionId}/reject", adminHandler.Reject)
				r.Put("/bins/{binId}/location", adminHandler.RelocateBin)
				r.Post("/bins", adminHandler.CreateBin)
				r.Get("/bins/{binId}/qr", adminHandler.BinQR)
				r.Get("/stats", adminHandler.Stats)
			})
		})
	})

	return &testEnv{
		router:      r,
		classifier:  classifier,
		users:       users,
		submissions: submissions,
		verify:      verify,
	}
}

// do issues a request against the test router and decodes the JSON body.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

// register creates an account and returns its token.
func (e *testEnv) register(t *testing.T, email, name, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status)
	return tokenFrom(t, body)
}

// loginAdmin signs in the seeded administrator.
func (e *testEnv) loginAdmin(t *testing.T) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, status)
	return tokenFrom(t, body)
}

func tokenFrom(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	token, ok := data["token"].(string)
	require.True(t, ok, "response has no token: %v", body)
	require.NotEmpty(t, token)
	return token
}

func dataOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return data
}
