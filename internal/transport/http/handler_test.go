package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t, testutil.HardcoreQuiz("quiz-1"))
	server := httptest.NewServer(NewHandler(env.Engine, nil, nil).Routes())
	t.Cleanup(server.Close)
	return server, env
}

func doJSON(t *testing.T, server *httptest.Server, method, path, userID string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set(UserHeader, userID)
	}
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealthzNeedsNoUser(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := server.Client().Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMissingUserIsUnauthorized(t *testing.T) {
	server, _ := newTestServer(t)
	resp, body := doJSON(t, server, http.MethodGet, "/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(domain.KindUnauthorized), body["error"].(map[string]any)["kind"])
}

func TestQueryUserIsIgnoredOnRESTRoutes(t *testing.T) {
	server, env := newTestServer(t)
	env.Store.SeedWallet("victim", 5000, 0)

	resp, body := doJSON(t, server, http.MethodPost, "/powercards/purchase?userId=victim", "", map[string]any{
		"type":     "hint",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(domain.KindUnauthorized), body["error"].(map[string]any)["kind"])

	resp, _ = doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/unlocks?userId=victim", "", map[string]any{"questionId": "q2"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, server, http.MethodGet, "/wallet", "victim", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 5000, body["coins"])
}

func TestAnswerAndFinishOverHTTP(t *testing.T) {
	server, env := newTestServer(t)

	resp, body := doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/attempts", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["attemptNumber"])

	resp, body = doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/answers", "u1", map[string]any{
		"questionId":     "q1",
		"selectedAnswer": "answer-1",
		"pressLuck":      false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["correct"])
	assert.EqualValues(t, 30, body["coinsEarned"])

	resp, body = doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/answers", "u1", map[string]any{
		"questionId":     "q1",
		"selectedAnswer": "answer-1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, string(domain.KindQuestionAlreadyAnswered), body["error"].(map[string]any)["kind"])

	resp, body = doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/finish", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["merged"])

	wallet, err := env.Engine.Wallet(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 30, wallet.Coins)
	assert.EqualValues(t, 15, wallet.Exp)

	resp, _ = doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/finish", "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurchaseWithoutFundsIsPaymentRequired(t *testing.T) {
	server, env := newTestServer(t)
	env.Store.SeedWallet("u1", 100, 0)

	resp, body := doJSON(t, server, http.MethodPost, "/powercards/purchase", "u1", map[string]any{
		"type":     "hint",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, string(domain.KindInsufficientFunds), body["error"].(map[string]any)["kind"])

	resp, body = doJSON(t, server, http.MethodPost, "/powercards/purchase", "u1", map[string]any{
		"type":     "teleport",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(domain.KindInvalidPowerCardType), body["error"].(map[string]any)["kind"])
}

func TestUnlockOverHTTP(t *testing.T) {
	server, env := newTestServer(t)
	env.Store.SeedWallet("u1", 2*domain.CoinsPerGem, 0)

	resp, body := doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/unlocks", "u1", map[string]any{"questionId": "q2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["gemsPaid"])
	assert.Equal(t, "answer-2", body["question"].(map[string]any)["answer"])

	resp, body = doJSON(t, server, http.MethodGet, "/quizzes/quiz-1/unlocks", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["questions"], 1)

	resp, _ = doJSON(t, server, http.MethodPost, "/quizzes/quiz-1/unlocks", "u1", map[string]any{"questionId": "q3"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	server, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/quizzes/quiz-1/answers", bytes.NewBufferString("{"))
	require.NoError(t, err)
	req.Header.Set(UserHeader, "u1")
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusForKinds(t *testing.T) {
	cases := map[domain.Kind]int{
		domain.KindNotFound:             http.StatusNotFound,
		domain.KindAttemptLimitExceeded: http.StatusConflict,
		domain.KindAlreadyUnlocked:      http.StatusConflict,
		domain.KindInsufficientFunds:    http.StatusPaymentRequired,
		domain.KindInvalidRequest:       http.StatusBadRequest,
		domain.KindInternal:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}
