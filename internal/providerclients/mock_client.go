package providerclients

import "context"

// MockClient is a canned-response client for tests and local development.
type MockClient struct {
	Responses []Response
	Calls     []MockCall

	next int
}

// MockCall records the arguments of one Generate invocation.
type MockCall struct {
	APIKey string
	Model  string
	Prompt string
}

// Generate replays the configured responses in order, repeating the last one
// once exhausted.
func (m *MockClient) Generate(ctx context.Context, apiKey, model, prompt string) Response {
	m.Calls = append(m.Calls, MockCall{APIKey: apiKey, Model: model, Prompt: prompt})

	if len(m.Responses) == 0 {
		return Response{Success: true, Content: "mock content", TokensUsed: 10}
	}
	resp := m.Responses[m.next]
	if m.next < len(m.Responses)-1 {
		m.next++
	}
	return resp
}
