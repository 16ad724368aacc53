package telephony

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/register-call", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req RegisterCallRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "agent_1", req.AgentID)
		assert.Equal(t, 24000, req.SampleRate)

		json.NewEncoder(w).Encode(RegisterCallResponse{
			CallID:     "call_xyz",
			AgentID:    req.AgentID,
			CallStatus: "registered",
			SampleRate: req.SampleRate,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "", 5*time.Second)
	resp, err := client.RegisterCall(context.Background(), &RegisterCallRequest{
		AgentID:                "agent_1",
		AudioWebsocketProtocol: "web",
		AudioEncoding:          "s16le",
		SampleRate:             24000,
	})
	require.NoError(t, err)
	assert.Equal(t, "call_xyz", resp.CallID)
	assert.Equal(t, "registered", resp.CallStatus)
}

func TestEndCallHitsCallPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 5*time.Second)
	require.NoError(t, client.EndCall(context.Background(), "call_xyz"))
	assert.Equal(t, "/end-call/call_xyz", gotPath)
}

func TestTransferCallSendsDestination(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfer-call/call_xyz", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "+15551234567", 5*time.Second)
	require.NoError(t, client.TransferCall(context.Background(), "call_xyz"))
	assert.Equal(t, "+15551234567", body["transfer_to"])
}

func TestDeletePhoneNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/delete-phone-number/+15550001111", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 5*time.Second)
	require.NoError(t, client.DeletePhoneNumber(context.Background(), "+15550001111"))
}

func TestProviderErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such call"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", 5*time.Second)
	err := client.EndCall(context.Background(), "call_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
