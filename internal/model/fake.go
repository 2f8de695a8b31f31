package model

import "context"

// FakeEngine returns a scripted blob (or error) on every call, and
// records the prompts it was given. Used to drive the boundary-handler
// and window-enforcement tests without a real model server.
type FakeEngine struct {
	Blob []byte
	Err  error

	Calls []FakeCall
}

// FakeCall records the arguments of one Generate invocation.
type FakeCall struct {
	Prompt         []byte
	HorizonSeconds float64
	Temperature    float64
	TopP           float64
}

// Generate implements Engine.
func (f *FakeEngine) Generate(_ context.Context, prompt []byte, horizonSeconds, temperature, topP float64) ([]byte, error) {
	f.Calls = append(f.Calls, FakeCall{
		Prompt:         prompt,
		HorizonSeconds: horizonSeconds,
		Temperature:    temperature,
		TopP:           topP,
	})
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Blob, nil
}
