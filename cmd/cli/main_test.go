package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coopledger/internal/infrastructure/postgres"
)

type recordedRequest struct {
	Method         string
	Path           string
	Query          string
	Body           string
	Actor          string
	Role           string
	Authorization  string
	IdempotencyKey string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)

		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{
			Method:         r.Method,
			Path:           r.URL.Path,
			Query:          r.URL.RawQuery,
			Body:           buf.String(),
			Actor:          r.Header.Get(actorHeader),
			Role:           r.Header.Get(actorRoleHeader),
			Authorization:  r.Header.Get("Authorization"),
			IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
		})
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		_, _ = w.Write([]byte(api.body))
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.requests)
	return a.requests[len(a.requests)-1]
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPeriodClose(t *testing.T) {
	api, srv := newFakeAPI(t, http.StatusOK, `{"period_key":"2025-03","processed_loans":2}`)

	out, err := execute(t, "--url", srv.URL, "--actor", "clerk-1", "--role", "accountant",
		"period", "close", "--year", "2025", "--month", "3", "--idempotency-key", "close-2025-03")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/periods/2025/3/close", req.Path)
	assert.Equal(t, "clerk-1", req.Actor)
	assert.Equal(t, "accountant", req.Role)
	assert.Equal(t, "close-2025-03", req.IdempotencyKey)
	assert.Contains(t, out, `"processed_loans": 2`)
}

func TestPeriodConfirmGeneratesIdempotencyKey(t *testing.T) {
	api, srv := newFakeAPI(t, http.StatusOK, `{"period_key":"2025-03"}`)

	_, err := execute(t, "--url", srv.URL, "--token", "jwt-token", "period", "confirm", "--year", "2025", "--month", "3")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, "/api/v1/periods/2025/3/confirm", req.Path)
	assert.Equal(t, "Bearer jwt-token", req.Authorization)
	assert.Len(t, req.IdempotencyKey, 36, "expected a UUID key")
}

func TestPeriodCloseRequiresFlags(t *testing.T) {
	_, srv := newFakeAPI(t, http.StatusOK, `{}`)

	_, err := execute(t, "--url", srv.URL, "period", "close", "--year", "2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month")
}

func TestAPIErrorIsReported(t *testing.T) {
	_, srv := newFakeAPI(t, http.StatusConflict, `{"error":"failed to close period","message":"fiscal period already closed","code":"conflict"}`)

	_, err := execute(t, "--url", srv.URL, "period", "close", "--year", "2025", "--month", "3")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Contains(t, err.Error(), "already closed")
}

func TestTrialBalance(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		api, srv := newFakeAPI(t, http.StatusOK, `{"period_key":"2025-03","debits":"100","credits":"100","variance":"0","balanced":true}`)

		out, err := execute(t, "--url", srv.URL, "trial-balance", "2025-03")
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/trial-balance/2025-03", api.last(t).Path)
		assert.Contains(t, out, `"balanced": true`)
	})

	t.Run("out of balance", func(t *testing.T) {
		_, srv := newFakeAPI(t, http.StatusOK, `{"period_key":"2025-03","debits":"100","credits":"99","variance":"1","balanced":false}`)

		out, err := execute(t, "--url", srv.URL, "trial-balance", "2025-03")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of balance by 1")
		assert.Contains(t, out, `"balanced": false`)
	})
}

func TestDividendsCalculate(t *testing.T) {
	api, srv := newFakeAPI(t, http.StatusCreated, `{"distribution":{"year":2024}}`)

	_, err := execute(t, "--url", srv.URL, "dividends", "calculate", "--year", "2024",
		"--dividend-rate", "5", "--average-return-rate", "10")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, "/api/v1/dividends/2024/calculate", req.Path)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, map[string]string{"dividend_rate": "5", "average_return_rate": "10"}, body)
}

func TestDividendsDistributeAndShow(t *testing.T) {
	api, srv := newFakeAPI(t, http.StatusOK, `{"paid_recipients":3}`)

	_, err := execute(t, "--url", srv.URL, "dividends", "distribute", "--year", "2024")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/dividends/2024/distribute", api.last(t).Path)

	_, err = execute(t, "--url", srv.URL, "dividends", "show", "--year", "2024")
	require.NoError(t, err)
	req := api.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/dividends/2024", req.Path)
	assert.Empty(t, req.IdempotencyKey)
}

func TestReports(t *testing.T) {
	api, srv := newFakeAPI(t, http.StatusOK, `{"balanced":true}`)

	_, err := execute(t, "--url", srv.URL, "reports", "balance-sheet", "--as-of", "2025-03-31")
	require.NoError(t, err)
	req := api.last(t)
	assert.Equal(t, "/api/v1/reports/balance-sheet", req.Path)
	assert.Equal(t, "as_of=2025-03-31", req.Query)

	_, err = execute(t, "--url", srv.URL, "reports", "income-expense", "--start", "2025-01-01", "--end", "2025-03-31")
	require.NoError(t, err)
	req = api.last(t)
	assert.Equal(t, "/api/v1/reports/income-expense", req.Path)
	assert.Equal(t, "end=2025-03-31&start=2025-01-01", req.Query)
}

func TestPrintJSONFallsBackToRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, []byte("not json")))
	assert.Equal(t, "not json\n", buf.String())

	buf.Reset()
	require.NoError(t, printJSON(&buf, []byte(`{"a":1}`)))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestNewAPIClientTrimsSlash(t *testing.T) {
	c := newAPIClient("http://localhost:8080/", "", "", "", 0)
	assert.False(t, strings.HasSuffix(c.baseURL, "/"))
}

func TestPrintMigrationStatus(t *testing.T) {
	cases := []struct {
		st   postgres.MigrationStatus
		want string
	}{
		{postgres.MigrationStatus{}, "no migrations applied\n"},
		{postgres.MigrationStatus{Version: 7, Applied: true}, "version 7\n"},
		{postgres.MigrationStatus{Version: 7, Dirty: true, Applied: true}, "version 7 (dirty)\n"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, printMigrationStatus(&buf, tc.st))
		assert.Equal(t, tc.want, buf.String())
	}
}
