package llm

import (
	"context"
	"sync"
)

// MockReply es una respuesta programada del MockClient.
type MockReply struct {
	Generation Generation
	Err        error
}

// MockClient permite tests sin llamar a un LLM real. Consume Script en orden y,
// cuando se agota, responde con Response/Err.
type MockClient struct {
	Response Generation
	Err      error
	Script   []MockReply

	mu      sync.Mutex
	prompts []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.Script) > 0 {
		next := m.Script[0]
		m.Script = m.Script[1:]
		return next.Generation, next.Err
	}
	return m.Response, m.Err
}

// Prompts devuelve una copia de los prompts recibidos.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls cuenta las llamadas a Generate.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
