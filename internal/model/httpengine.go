package model

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPEngine calls a generation model server over an OpenAI-style JSON
// endpoint: POST prompt+sampling params, get back a base64-encoded MIDI
// blob. No ecosystem SDK in the retrieved pack targets a bespoke MIDI
// continuation model, so this stays on the standard library net/http
// client rather than adopting an unrelated SDK.
type HTTPEngine struct {
	Endpoint string
	Client   *http.Client
	Logger   *zap.Logger
}

// NewHTTPEngine returns an HTTPEngine whose client has a 60-second
// timeout. That timeout bounds every Generate call whatever the
// context's deadline; a context deadline can only shorten it.
func NewHTTPEngine(endpoint string, logger *zap.Logger) *HTTPEngine {
	return &HTTPEngine{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 60 * time.Second},
		Logger:   logger,
	}
}

type generateRequest struct {
	PromptMIDIBase64 string  `json:"prompt_midi_base64"`
	HorizonSeconds   float64 `json:"horizon_seconds"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
}

type generateResponse struct {
	MIDIBase64 string `json:"midi_base64"`
	Error      string `json:"error"`
}

// Generate implements Engine.
func (e *HTTPEngine) Generate(ctx context.Context, prompt []byte, horizonSeconds, temperature, topP float64) ([]byte, error) {
	reqBody, err := json.Marshal(generateRequest{
		PromptMIDIBase64: base64.StdEncoding.EncodeToString(prompt),
		HorizonSeconds:   horizonSeconds,
		Temperature:      temperature,
		TopP:             topP,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, out.Error)
	}

	blob, err := base64.StdEncoding.DecodeString(out.MIDIBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode midi: %v", ErrGenerationFailed, err)
	}
	return blob, nil
}
