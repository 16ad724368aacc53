package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenniferm/eunoia-backend/internal/callhub"
	"github.com/kenniferm/eunoia-backend/internal/config"
	"github.com/kenniferm/eunoia-backend/internal/domain"
	"github.com/kenniferm/eunoia-backend/internal/store"
	"github.com/kenniferm/eunoia-backend/internal/telephony"
)

type testEnv struct {
	echo  *echo.Echo
	store *store.SQLiteStore
	hub   *callhub.Hub
}

// newTestEnv builds a handler backed by a temp database and a fake
// telephony provider.
func newTestEnv(t *testing.T, provider http.HandlerFunc) *testEnv {
	t.Helper()

	providerServer := httptest.NewServer(provider)
	t.Cleanup(providerServer.Close)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := callhub.NewHub()
	tel := telephony.NewClient(providerServer.URL, "test-key", "+15551234567", 5*time.Second)

	e := echo.New()
	NewHandler(st, tel, hub, &config.Config{}).RegisterRoutes(e)

	return &testEnv{echo: e, store: st, hub: hub}
}

func noProvider(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected provider request: %s %s", r.Method, r.URL.Path)
	}
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, noProvider(t))

	rec := doJSON(t, env.echo, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, float64(0), resp["active_calls"])
}

func TestRegisterCallStoresCall(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register-call", r.URL.Path)
		json.NewEncoder(w).Encode(telephony.RegisterCallResponse{
			CallID:     "call_reg",
			AgentID:    "agent_1",
			CallStatus: "registered",
			SampleRate: 24000,
		})
	})

	rec := doJSON(t, env.echo, http.MethodPost, "/register-call", `{"agent_id":"agent_1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp telephony.RegisterCallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "call_reg", resp.CallID)

	call, err := env.store.GetCall(context.Background(), "call_reg")
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, domain.CallStatusRegistered, call.Status)
	assert.Equal(t, "agent_1", call.AgentID)
}

func TestRegisterCallRequiresAgentID(t *testing.T) {
	env := newTestEnv(t, noProvider(t))

	rec := doJSON(t, env.echo, http.MethodPost, "/register-call", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCallNotFound(t *testing.T) {
	env := newTestEnv(t, noProvider(t))

	rec := doJSON(t, env.echo, http.MethodGet, "/calls/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCallsEmpty(t *testing.T) {
	env := newTestEnv(t, noProvider(t))

	rec := doJSON(t, env.echo, http.MethodGet, "/calls", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]domain.Call
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp["calls"])
	assert.NotNil(t, resp["calls"])
}

func TestEndCallRecordsReason(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/end-call/call_live", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, env.store.CreateCall(context.Background(), &domain.Call{
		CallID:  "call_live",
		AgentID: "agent_1",
		Status:  domain.CallStatusOngoing,
	}))

	rec := doJSON(t, env.echo, http.MethodPost, "/calls/call_live/end", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, false, resp["channel_was_open"])

	call, err := env.store.GetCall(context.Background(), "call_live")
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusEnded, call.Status)
	assert.Equal(t, "operator", call.EndReason)
}

func TestCreateOutboundCallValidates(t *testing.T) {
	env := newTestEnv(t, noProvider(t))

	rec := doJSON(t, env.echo, http.MethodPost, "/outbound-calls", `{"from_number":"+15550001111"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOutboundCall(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create-phone-call", r.URL.Path)
		var req telephony.CreatePhoneCallRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "+15550001111", req.FromNumber)
		assert.Equal(t, "+15550002222", req.ToNumber)
		w.WriteHeader(http.StatusCreated)
	})

	rec := doJSON(t, env.echo, http.MethodPost, "/outbound-calls",
		`{"from_number":"+15550001111","to_number":"+15550002222","agent_id":"agent_1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListAppointments(t *testing.T) {
	env := newTestEnv(t, noProvider(t))
	require.NoError(t, env.store.CreateAppointment(context.Background(), &domain.Appointment{
		AppointmentID: "appt_1",
		CallID:        "call_abc",
		Date:          "2024-05-01",
	}))

	rec := doJSON(t, env.echo, http.MethodGet, "/appointments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]domain.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["appointments"], 1)
	assert.Equal(t, "2024-05-01", resp["appointments"][0].Date)
}
