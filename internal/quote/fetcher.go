package quote

import "context"

// Fetcher retrieves raw quote records from a feed. The result maps each
// requested quote code to its record; codes the feed did not answer are
// absent.
type Fetcher interface {
	FetchQuotes(ctx context.Context, codes []string) (map[string]string, error)
	Name() string
}

// MockFetcher returns fixed records for development and testing.
type MockFetcher struct {
	Records map[string]string
	Err     error
	Calls   int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuotes(_ context.Context, codes []string) (map[string]string, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]string, len(codes))
	for _, c := range codes {
		if r, ok := m.Records[c]; ok {
			out[c] = r
		}
	}
	return out, nil
}
