package providers

import (
	"context"
	"errors"
	"sync/atomic"

	"route-divergence-service/internal/domain"
)

// MockProvider returns a fixed estimate or error. It is safe for concurrent use
// and counts calls so tests can assert fan-out behaviour.
type MockProvider struct {
	name     string
	estimate domain.Estimate
	err      error
	block    <-chan struct{}
	calls    atomic.Int64
}

func NewMockProvider(name string, est domain.Estimate) *MockProvider {
	return &MockProvider{name: name, estimate: est}
}

func NewFailingMockProvider(name string, err error) *MockProvider {
	if err == nil {
		err = errors.New("mock provider failure")
	}
	return &MockProvider{name: name, err: err}
}

// BlockUntil makes Fetch wait for release (or context cancellation) before answering.
func (p *MockProvider) BlockUntil(release <-chan struct{}) *MockProvider {
	p.block = release
	return p
}

func (p *MockProvider) Name() string { return p.name }

func (p *MockProvider) Calls() int64 { return p.calls.Load() }

func (p *MockProvider) Fetch(ctx context.Context, _ domain.RouteConfig) (domain.Estimate, error) {
	p.calls.Add(1)

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return domain.Estimate{}, ctx.Err()
		}
	}

	if p.err != nil {
		return domain.Estimate{}, p.err
	}
	return p.estimate, nil
}
