// Package mocks provides centralized mock implementations for testing.
//
// The mocks are scriptable through function fields and record their calls
// under a mutex, so they can be shared by concurrent orchestrator tests.
//
// Usage:
//
//	provider := &mocks.Provider{
//	    GenerateFn: func(ctx context.Context, req generation.Request) (*domain.RawCard, error) {
//	        return nil, generation.NewTransientError("fake", 503, errors.New("unavailable"))
//	    },
//	}
//	client, _ := generation.NewClient(provider, policy, logger)
package mocks
