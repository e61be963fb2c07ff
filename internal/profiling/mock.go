package profiling

import (
	"context"
	"sync"

	"insight-profile/internal/domain"
)

// MockProvider permite tests sin llamar al proveedor real.
type MockProvider struct {
	mu sync.Mutex

	UserID    string
	CreateErr error
	Profile   domain.Payload
	FetchErr  error

	CreateCalls []string
	FetchCalls  []string
}

func (m *MockProvider) CreateSubject(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, key)
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	return m.UserID, nil
}

func (m *MockProvider) FetchSubject(ctx context.Context, externalUserID string) (domain.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls = append(m.FetchCalls, externalUserID)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Profile, nil
}

// Calls devuelve cuantas veces se invoco cada operacion.
func (m *MockProvider) Calls() (creates, fetches int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateCalls), len(m.FetchCalls)
}
