package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/textlens/internal/ai"
	"github.com/xxxsen/textlens/internal/handler"
	"github.com/xxxsen/textlens/internal/middleware"
	"github.com/xxxsen/textlens/internal/pkg/jwt"
	"github.com/xxxsen/textlens/internal/repo"
	"github.com/xxxsen/textlens/internal/service"
	"github.com/xxxsen/textlens/internal/testutil"
)

var testLabels = []string{"technology", "business", "science"}

type testEnv struct {
	router   http.Handler
	userRepo *repo.UserRepo
}

func setupRouter(t *testing.T, classifier ai.Classifier, summarizer ai.Summarizer) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)
	userRepo := repo.NewUserRepo(db, testutil.TestDriver)

	signer, err := jwt.NewSigner([]byte("test-secret"), "HS256", time.Hour)
	require.NoError(t, err)
	authService := service.NewAuthService(userRepo, signer)

	if classifier == nil {
		src := ai.NewMockSource(11)
		classifier = ai.NewMockClassifier(src, testLabels, false)
		summarizer = ai.NewMockSummarizer(src, false)
	}
	analyzeService := service.NewAnalyzeService(classifier, summarizer, service.AnalyzeOptions{
		MinTextLength:   20,
		CandidateLabels: testLabels,
	})

	deps := handler.RouterDeps{
		Auth:       handler.NewAuthHandler(authService),
		Analyze:    handler.NewAnalyzeHandler(analyzeService, true),
		System:     handler.NewSystemHandler(userRepo, "test"),
		Signer:     signer,
		UserLookup: authService.CurrentUser,
	}

	engine, err := webapi.NewEngine(
		"/",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return &testEnv{router: engine, userRepo: userRepo}
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(token string) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: token})
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type tokenBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		CreatedAt string `json:"created_at"`
	} `json:"user"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func register(t *testing.T, h http.Handler, email, password string) tokenBody {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[tokenBody](t, w)
}
