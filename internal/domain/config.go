package domain

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model             string
	Dimensions        int
	DistanceMetric    string
	DistanceThreshold float64
}

// DefaultVectorConfig returns the defaults for text-embedding-3-small.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:             "text-embedding-3-small",
		Dimensions:        1536,
		DistanceMetric:    "cosine",
		DistanceThreshold: 0.75,
	}
}

// SearchLimits bounds page sizes for list and search endpoints.
type SearchLimits struct {
	Default int
	Max     int
}

// DefaultSearchLimits returns the catalog defaults (20 / 100).
func DefaultSearchLimits() SearchLimits {
	return SearchLimits{Default: 20, Max: 100}
}

// Normalized fills unset fields from the defaults and keeps Default <= Max.
func (l SearchLimits) Normalized() SearchLimits {
	d := DefaultSearchLimits()
	if l.Max <= 0 {
		l.Max = d.Max
	}
	if l.Default <= 0 {
		l.Default = d.Default
	}
	if l.Default > l.Max {
		l.Default = l.Max
	}
	return l
}

// Clamp resolves a requested limit: non-positive → Default, above Max → Max.
func (l SearchLimits) Clamp(n int) int {
	if n <= 0 {
		return l.Default
	}
	if n > l.Max {
		return l.Max
	}
	return n
}

// KeyPrefix namespaces every key this service writes to the cache store.
const KeyPrefix = "shopsearch:"
