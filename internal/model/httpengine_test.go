package model

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPEngine_GenerateSuccess(t *testing.T) {
	want := []byte("fake-midi-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2.0, req.HorizonSeconds)

		resp := generateResponse{MIDIBase64: base64.StdEncoding.EncodeToString(want)}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	engine := NewHTTPEngine(server.URL, zap.NewNop())
	blob, err := engine.Generate(context.Background(), []byte("prompt"), 2.0, 0.8, 0.9)
	require.NoError(t, err)
	assert.Equal(t, want, blob)
}

func TestHTTPEngine_GenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	engine := NewHTTPEngine(server.URL, zap.NewNop())
	_, err := engine.Generate(context.Background(), []byte("prompt"), 2.0, 0.8, 0.9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestHTTPEngine_GenerateEngineReportedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := generateResponse{Error: "model overloaded"}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	engine := NewHTTPEngine(server.URL, zap.NewNop())
	_, err := engine.Generate(context.Background(), []byte("prompt"), 2.0, 0.8, 0.9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
