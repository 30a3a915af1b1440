package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/constants"
	"ekyc.io/application/policy"
	"ekyc.io/application/services"
	verification_usecases "ekyc.io/application/usecases/verification"
	"ekyc.io/infrastructure/auth"
	"ekyc.io/infrastructure/env"
	"ekyc.io/infrastructure/imageloader"
	startup "ekyc.io/infrastructure/startUp"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-key"

type memoryPolicyStore struct {
	mu       sync.Mutex
	versions []policy.Config
}

func (m *memoryPolicyStore) LatestConfig(ctx context.Context) (*policy.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.versions) == 0 {
		return nil, &apperrors.ConfigurationMissing{Source: "memory"}
	}
	cfg := m.versions[len(m.versions)-1]
	return &cfg, nil
}

func (m *memoryPolicyStore) SaveConfig(ctx context.Context, cfg policy.Config, updatedBy string) (*policy.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := policy.Config{
		Version:    int64(len(m.versions) + 1),
		Components: cfg.Components,
		UpdatedBy:  updatedBy,
		CreatedAt:  time.Now().UTC(),
	}
	m.versions = append(m.versions, saved)
	return &saved, nil
}

type envelope struct {
	Message      string          `json:"message"`
	Body         json.RawMessage `json:"body"`
	Errors       []string        `json:"errors"`
	ResponseCode *uint           `json:"response_code"`
}

func newTestServer(t *testing.T) (*gin.Engine, *memoryPolicyStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := env.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Server.JWTSecret = testSecret
	cfg.Server.JWTIssuer = "ekyc-test"

	store := &memoryPolicyStore{}
	require.NoError(t, startup.BuildEngines(cfg, store))
	services.PolicyStore = store
	services.Recorder = &verification_usecases.Recorder{}
	services.Verifier.Recorder = services.Recorder
	return NewRouter(cfg), store
}

func do(t *testing.T, router http.Handler, method string, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var out envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func adminToken(t *testing.T, issuer string, tokenType string) map[string]string {
	t.Helper()
	now := time.Now()
	token, err := auth.GenerateAuthToken(auth.ClaimsData{
		Issuer:    issuer,
		Subject:   "ops@ekyc.test",
		TokenType: tokenType,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}, testSecret)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + *token}
}

// card renders a textured card on a dark background.
func card(w, h int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	inner := image.Rect(w/25, h/25, w-w/25, h-h/25)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := int((uint32(x)*374761393+uint32(y)*668265263)>>27) - 16
			if (image.Point{X: x, Y: y}).In(inner) {
				img.SetRGBA(x, y, color.RGBA{R: uint8(190 + n), G: uint8(170 + n), B: uint8(140 + n), A: 255})
				continue
			}
			img.SetRGBA(x, y, color.RGBA{R: 40, G: 40, B: 46, A: 255})
		}
	}
	encoded, _ := imageloader.EncodeBase64(img)
	return encoded
}

func TestPingAndNoRoute(t *testing.T) {
	router, _ := newTestServer(t)

	rec, body := do(t, router, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong!", body.Message)

	rec, body = do(t, router, http.MethodGet, "/api/v1/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body.Message, "does not exist")
}

func TestRequestIDIsEchoed(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/verifications/stats", nil, map[string]string{"X-Request-Id": "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))

	rec, _ = do(t, router, http.MethodGet, "/api/v1/verifications/stats", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestVerificationValidation(t *testing.T) {
	router, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
		wantErr  string
		wantResp *uint
	}{
		{name: "malformed json", body: "{", wantCode: http.StatusBadRequest},
		{name: "missing front", body: map[string]any{}, wantCode: http.StatusUnprocessableEntity, wantErr: "front is required"},
		{name: "unknown document type", body: map[string]any{"front": card(64, 40), "document_type": "driving_licence"}, wantCode: http.StatusUnprocessableEntity, wantErr: "document_type must be yemen_national_id or yemen_passport"},
		{name: "bad gender", body: map[string]any{"front": card(64, 40), "declared": map[string]any{"gender": "x"}}, wantCode: http.StatusUnprocessableEntity, wantErr: "declared.gender must be male or female"},
		{name: "undecodable front", body: map[string]any{"front": "bm90IGFuIGltYWdl"}, wantCode: http.StatusUnprocessableEntity, wantResp: &constants.INVALID_VERIFICATION_INPUT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, http.MethodPost, "/api/v1/verifications", tt.body, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				assert.Contains(t, body.Errors, tt.wantErr)
			}
			if tt.wantResp != nil {
				require.NotNil(t, body.ResponseCode)
				assert.Equal(t, *tt.wantResp, *body.ResponseCode)
			}
		})
	}
}

func TestVerificationRoundTrip(t *testing.T) {
	router, _ := newTestServer(t)

	rec, body := do(t, router, http.MethodPost, "/api/v1/verifications", map[string]any{
		"front":    card(320, 200),
		"back":     card(320, 200),
		"declared": map[string]any{"id_number": "01010012345", "gender": "male"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body.ResponseCode)

	var result verification_usecases.Result
	require.NoError(t, json.Unmarshal(body.Body, &result))
	assert.NotEmpty(t, result.AttemptID)
	assert.NotEmpty(t, result.Decision)
	assert.Equal(t, "no selfie supplied", result.Skipped["liveness"])
	assert.Equal(t, "ocr unavailable", result.Skipped["front_ocr"])

	rec, _ = do(t, router, http.MethodGet, "/api/v1/verifications/"+result.AttemptID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing is stored without a cache or datastore")
}

func TestFieldsCompare(t *testing.T) {
	router, _ := newTestServer(t)

	rec, body := do(t, router, http.MethodPost, "/api/v1/fields/compare", map[string]any{
		"declared":  map[string]any{"id_number": "02000005039", "gender": "male"},
		"extracted": map[string]any{"id_number": "02000005039", "gender": "male"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		OverallDecision string `json:"overall_decision"`
		Fields          []struct {
			FieldName     string `json:"field_name"`
			FraudDetected bool   `json:"fraud_detected"`
		} `json:"field_comparisons"`
	}
	require.NoError(t, json.Unmarshal(body.Body, &report))
	assert.Equal(t, "rejected", report.OverallDecision)
	fraud := false
	for _, f := range report.Fields {
		if f.FieldName == "gender" {
			fraud = f.FraudDetected
		}
	}
	assert.True(t, fraud, "fourth digit 0 declares a female holder")

	rec, _ = do(t, router, http.MethodPost, "/api/v1/fields/compare", map[string]any{"ocr_confidence": 2}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalysisRoutes(t *testing.T) {
	router, _ := newTestServer(t)

	rec, _ := do(t, router, http.MethodPost, "/api/v1/documents/evaluate", map[string]any{
		"document_type": "yemen_passport",
		"front":         card(320, 220),
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/documents/evaluate", map[string]any{"front": card(64, 40)}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/liveness", map[string]any{"image": "%%%"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminConfigRequiresToken(t *testing.T) {
	router, _ := newTestServer(t)

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no header"},
		{name: "not bearer", headers: map[string]string{"Authorization": "Basic abc"}},
		{name: "garbage token", headers: map[string]string{"Authorization": "Bearer abc.def.ghi"}},
		{name: "wrong issuer", headers: adminToken(t, "someone-else", constants.ADMIN_TOKEN_TYPE)},
		{name: "wrong token type", headers: adminToken(t, "ekyc-test", "user")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, router, http.MethodGet, "/api/v1/admin/verification-config", nil, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminConfigUpdate(t *testing.T) {
	router, store := newTestServer(t)
	headers := adminToken(t, "ekyc-test", constants.ADMIN_TOKEN_TYPE)

	rec, body := do(t, router, http.MethodGet, "/api/v1/admin/verification-config", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	var current policy.Config
	require.NoError(t, json.Unmarshal(body.Body, &current))
	assert.True(t, current.Default)

	rec, body = do(t, router, http.MethodPut, "/api/v1/admin/verification-config", map[string]any{
		"components": map[string]any{"dob": map[string]any{"min_points": 0, "max_points": 5, "enabled": true}},
	}, headers)
	require.Equal(t, http.StatusOK, rec.Code, body.Errors)
	var saved policy.Config
	require.NoError(t, json.Unmarshal(body.Body, &saved))
	assert.Equal(t, int64(1), saved.Version)
	assert.Equal(t, "ops@ekyc.test", saved.UpdatedBy)
	assert.Equal(t, 5.0, saved.Components[policy.DOB].MaxPoints)
	assert.Equal(t, 20.0, saved.Components[policy.FaceMatching].MaxPoints, "untouched components keep their settings")

	rec, body = do(t, router, http.MethodGet, "/api/v1/admin/verification-config", nil, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(body.Body, &current))
	assert.Equal(t, int64(1), current.Version)

	invalid := []map[string]any{
		{"components": map[string]any{"face_matching": map[string]any{"min_points": 30, "max_points": 20, "enabled": true}}},
		{"components": map[string]any{"not_a_component": map[string]any{"min_points": 1, "max_points": 2, "enabled": true}}},
		{"components": map[string]any{"dob": map[string]any{"max_points": 2, "enabled": true}}},
		{"components": map[string]any{}},
	}
	for _, payload := range invalid {
		rec, _ = do(t, router, http.MethodPut, "/api/v1/admin/verification-config", payload, headers)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, payload)
	}
	assert.Len(t, store.versions, 1)
}
