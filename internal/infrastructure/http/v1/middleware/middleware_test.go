package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/apperror"
	appctx "metalstock/internal/core/context"
	"metalstock/internal/infrastructure/metrics"
	"metalstock/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	tokens map[string]*appctx.UserContext
}

func (v stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := v.tokens[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

var testValidator = stubValidator{tokens: map[string]*appctx.UserContext{
	"admin-token":    {UserID: "11111111-1111-1111-1111-111111111111", Role: appctx.RoleAdmin},
	"operator-token": {UserID: "22222222-2222-2222-2222-222222222222", Role: appctx.RoleOperator},
}}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func serve(r *gin.Engine, method, path, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", Auth(testValidator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": appctx.GetUserID(c.Request.Context()),
			"role":   c.GetString("role"),
		})
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperror.CodeUnauthorized, decodeError(t, w).Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/me", "nope", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid token", decodeError(t, w).Message)
	})

	t.Run("valid token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/me", "operator-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":"22222222-2222-2222-2222-222222222222","role":"operator"}`, w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/audit", Auth(testValidator), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/open", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/audit", "operator-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeForbidden, body.Code)
	assert.Equal(t, appctx.RoleOperator, body.Details["role"])

	w = serve(r, http.MethodGet, "/audit", "admin-token", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/open", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperror.NewNegativeBalanceConfirmation("balance would go negative", "-1.500"))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("connection reset"))
	})

	w := serve(r, http.MethodGet, "/app", "", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeNegativeBalance, body.Code)
	assert.Equal(t, "-1.500", body.Details["prospectiveBalance"])

	w = serve(r, http.MethodGet, "/plain", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decodeError(t, w)
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Equal(t, w.Header().Get(HeaderRequestID), body.Details["request_id"])
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decodeError(t, w).Code)
}

func TestTrace_PropagatesIDs(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	r.GET("/ping", func(c *gin.Context) {
		tc := appctx.GetTrace(c.Request.Context())
		require.NotNil(t, tc)
		c.String(http.StatusOK, tc.TraceID)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderTraceID, "trace-abc")
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Body.String())
	assert.Equal(t, "trace-abc", w.Header().Get(HeaderTraceID))
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
}

type fakeIdempotencyStore struct {
	replay   *postgres.IdempotencyReplay
	acquired []string
	failed   []int
	released []string
}

func (s *fakeIdempotencyStore) AcquireKey(_ context.Context, key, _, operation, _ string) (*postgres.IdempotencyReplay, error) {
	s.acquired = append(s.acquired, key+"|"+operation)
	return s.replay, nil
}

func (s *fakeIdempotencyStore) CompleteKey(context.Context, string, int, string, any) error {
	return nil
}

func (s *fakeIdempotencyStore) FailKey(_ context.Context, _ string, statusCode int, _ string, _ any) error {
	s.failed = append(s.failed, statusCode)
	return nil
}

func (s *fakeIdempotencyStore) ReleaseKey(_ context.Context, key string) error {
	s.released = append(s.released, key)
	return nil
}

func idempotentRouter(store IdempotencyStore, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/movements", Auth(testValidator), Idempotency(store), handler)
	r.GET("/movements", Auth(testValidator), Idempotency(store), handler)
	return r
}

func postWithKey(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/movements", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer operator-token")
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_Replay(t *testing.T) {
	store := &fakeIdempotencyStore{replay: &postgres.IdempotencyReplay{
		StatusCode:  http.StatusCreated,
		ContentType: "application/json",
		Body:        []byte(`{"id":"stored"}`),
	}}
	called := false
	r := idempotentRouter(store, func(c *gin.Context) { called = true })

	w := postWithKey(r, "k-1", `{"weight":"1"}`)

	assert.False(t, called)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, `{"id":"stored"}`, w.Body.String())
	assert.Equal(t, []string{"k-1|POST /movements"}, store.acquired)
}

func TestIdempotency_SkipsWithoutKeyAndOnReads(t *testing.T) {
	store := &fakeIdempotencyStore{}
	calls := 0
	r := idempotentRouter(store, func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	postWithKey(r, "", `{}`)
	serve(r, http.MethodGet, "/movements", "operator-token", "")

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.acquired)
}

func TestIdempotency_BodyStillReadable(t *testing.T) {
	store := &fakeIdempotencyStore{}
	var got map[string]string
	r := idempotentRouter(store, func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&got))
		c.Status(http.StatusCreated)
	})

	w := postWithKey(r, "k-body", `{"note":"hello"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hello", got["note"])
}

func TestIdempotency_ErrorOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantFailed   []int
		wantReleased []string
	}{
		{
			name:       "client error is stored",
			err:        apperror.NewValidation("weight must be positive"),
			wantStatus: http.StatusBadRequest,
			wantFailed: []int{http.StatusBadRequest},
		},
		{
			name:         "confirmation prompt releases the key",
			err:          apperror.NewNegativeBalanceConfirmation("balance would go negative", "-2"),
			wantStatus:   http.StatusConflict,
			wantReleased: []string{"k-err"},
		},
		{
			name:         "transient failure releases the key",
			err:          apperror.NewTransient(errors.New("serialization failure")),
			wantStatus:   http.StatusServiceUnavailable,
			wantReleased: []string{"k-err"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeIdempotencyStore{}
			r := idempotentRouter(store, func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			w := postWithKey(r, "k-err", `{}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantFailed, store.failed)
			assert.Equal(t, tt.wantReleased, store.released)
		})
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	reg := metrics.New()
	r := gin.New()
	r.Use(Metrics(reg))
	r.GET("/positions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/positions/a", "", "")
	serve(r, http.MethodGet, "/positions/b", "", "")
	serve(r, http.MethodGet, "/nowhere", "", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("/positions/:id", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("unmatched", http.MethodGet, "404")))
}
