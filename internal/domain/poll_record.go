package domain

// Represents one atomic outcome of polling every configured provider
// for a single route at a single instant.
// Results holds exactly one entry per configured provider, in configuration order.
// A PollRecord is immutable once handed to a RecordSink.
type PollRecord struct {
	ID        string           `json:"id"`
	Timestamp int64            `json:"timestamp"`
	RouteID   string           `json:"routeId"`
	Results   []ProviderResult `json:"results"`
}

// Return the result for the named provider.
func (r PollRecord) Result(provider string) (ProviderResult, bool) {
	for _, res := range r.Results {
		if res.Provider == provider {
			return res, true
		}
	}
	return ProviderResult{}, false
}
