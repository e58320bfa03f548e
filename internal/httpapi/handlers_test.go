package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"call-analytics/internal/auth"
	"call-analytics/internal/calls"
	"call-analytics/internal/config"
	"call-analytics/internal/tenant"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *tenant.MemoryRepo, *calls.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	keys := tenant.NewMemoryRepo()
	store := calls.NewMemoryRepo()
	resolver := tenant.NewResolver(keys, nil)
	sessions, err := auth.NewSessionManager(config.AuthConfig{
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	h := Handlers{
		Calls:    calls.NewService(store),
		Tenants:  resolver,
		Sessions: sessions,
	}

	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/sessions", h.CreateSession)

	protected := r.Group("/")
	protected.Use(auth.RequireTenant(resolver, sessions))
	{
		protected.POST("/calls", h.SaveCall)
		protected.GET("/calls", h.ListCalls)
	}
	return r, keys, store
}

func do(r *gin.Engine, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		OK        bool   `json:"ok"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !resp.OK || resp.Timestamp == "" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSaveCall_MissingKey(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/calls", `{"status":"Qualified"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Missing API key") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSaveCall_RevokedAndUnknownIndistinguishable(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "dead-key", AccountID: "acct-1", Revoked: true})

	revoked := do(r, http.MethodPost, "/calls", `{}`, map[string]string{"X-Api-Key": "dead-key"})
	unknown := do(r, http.MethodPost, "/calls", `{}`, map[string]string{"X-Api-Key": "never-existed"})

	if revoked.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", revoked.Code, unknown.Code)
	}
	if revoked.Body.String() != unknown.Body.String() {
		t.Fatalf("revoked and unknown bodies differ: %s vs %s", revoked.Body.String(), unknown.Body.String())
	}
}

func TestSaveCall_GeneratesExternalID(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})

	body := `{"contactName":"John Smith","phone":"(555) 123-4567","status":"Qualified"}`
	w := do(r, http.MethodPost, "/calls", body, map[string]string{"X-Api-Key": "good-key"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK         bool   `json:"ok"`
		ExternalID string `json:"externalId"`
		Record     struct {
			Status    string `json:"status"`
			AccountID string `json:"account_id"`
		} `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !resp.OK {
		t.Fatalf("expected ok response")
	}
	if !calls.ExternalIDPattern.MatchString(resp.ExternalID) {
		t.Fatalf("generated id %q does not match pattern", resp.ExternalID)
	}
	if resp.Record.Status != "Qualified" {
		t.Fatalf("expected status Qualified, got %q", resp.Record.Status)
	}
	if resp.Record.AccountID != "acct-1" {
		t.Fatalf("expected account bound from key, got %q", resp.Record.AccountID)
	}
}

func TestSaveCall_AccountNeverTakenFromBody(t *testing.T) {
	r, keys, store := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})

	// accountId in the body must be ignored entirely.
	body := `{"externalId":"call_1","accountId":"acct-evil","status":"Qualified"}`
	w := do(r, http.MethodPost, "/calls", body, map[string]string{"X-Api-Key": "good-key"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	rows, err := store.List(context.Background(), "acct-1", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].AccountID != "acct-1" {
		t.Fatalf("expected record owned by acct-1, got %+v", rows)
	}
}

func TestSaveCall_SecondSubmissionWins(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})
	hdr := map[string]string{"X-Api-Key": "good-key"}

	if w := do(r, http.MethodPost, "/calls", `{"externalId":"call_1","status":"Qualified"}`, hdr); w.Code != http.StatusOK {
		t.Fatalf("first post failed: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/calls", `{"externalId":"call_1","status":"Completed"}`, hdr); w.Code != http.StatusOK {
		t.Fatalf("second post failed: %d", w.Code)
	}

	w := do(r, http.MethodGet, "/calls", "", hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Summary calls.Summary `json:"summary"`
		Data    []struct {
			Status     string `json:"status"`
			ExternalID string `json:"externalId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected one record, got %d", len(resp.Data))
	}
	if resp.Data[0].Status != "Completed" {
		t.Fatalf("expected status Completed, got %q", resp.Data[0].Status)
	}
	if resp.Summary.TotalCalls != 1 {
		t.Fatalf("expected summary over one call, got %+v", resp.Summary)
	}
}

func TestListCalls_TenantIsolation(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "key-a", AccountID: "acct-a"})
	keys.PutKey(tenant.APIKey{Key: "key-b", AccountID: "acct-b"})

	do(r, http.MethodPost, "/calls", `{"externalId":"a1","contactName":"Alice"}`, map[string]string{"X-Api-Key": "key-a"})
	do(r, http.MethodPost, "/calls", `{"externalId":"b1","contactName":"Bob"}`, map[string]string{"X-Api-Key": "key-b"})

	w := do(r, http.MethodGet, "/calls", "", map[string]string{"X-Api-Key": "key-b"})
	var resp struct {
		Data []struct {
			ExternalID string `json:"externalId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ExternalID != "b1" {
		t.Fatalf("expected only b1, got %+v", resp.Data)
	}
}

func TestListCalls_LimitClamping(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})
	hdr := map[string]string{"X-Api-Key": "good-key"}

	for _, ext := range []string{"c1", "c2", "c3"} {
		do(r, http.MethodPost, "/calls", `{"externalId":"`+ext+`"}`, hdr)
	}

	for _, q := range []string{"?limit=5000", "?limit=0", "?limit=abc", ""} {
		w := do(r, http.MethodGet, "/calls"+q, "", hdr)
		if w.Code != http.StatusOK {
			t.Fatalf("GET /calls%s: expected 200, got %d", q, w.Code)
		}
		var resp struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if len(resp.Data) != 3 {
			t.Fatalf("GET /calls%s: expected 3 records, got %d", q, len(resp.Data))
		}
	}

	w := do(r, http.MethodGet, "/calls?limit=2", "", hdr)
	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected limit=2 honored, got %d", len(resp.Data))
	}
}

func TestSessionFlow_ReadWithBearerToken(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})
	hdr := map[string]string{"X-Api-Key": "good-key"}

	do(r, http.MethodPost, "/calls", `{"externalId":"c1","status":"Completed"}`, hdr)

	w := do(r, http.MethodPost, "/sessions", "", hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("session exchange failed: %d %s", w.Code, w.Body.String())
	}
	var sess struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if sess.Token == "" || sess.ExpiresIn <= 0 {
		t.Fatalf("unexpected session body: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/calls", "", map[string]string{"Authorization": "Bearer " + sess.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("bearer read failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []struct {
			ExternalID string `json:"externalId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ExternalID != "c1" {
		t.Fatalf("expected c1 via session read, got %+v", resp.Data)
	}
}

func TestSessions_BadKeyRejected(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/sessions", "", map[string]string{"X-Api-Key": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	w = do(r, http.MethodPost, "/sessions", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing key, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Missing API key") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSaveCall_AcceptsSecretHeader(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})

	w := do(r, http.MethodPost, "/calls", `{"externalId":"c1"}`, map[string]string{"X-Secret": "good-key"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via X-Secret, got %d", w.Code)
	}
}

func TestSaveCall_InvalidJSON(t *testing.T) {
	r, keys, _ := newTestRouter(t)
	keys.PutKey(tenant.APIKey{Key: "good-key", AccountID: "acct-1"})

	w := do(r, http.MethodPost, "/calls", `{not json`, map[string]string{"X-Api-Key": "good-key"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
