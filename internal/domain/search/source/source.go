package source

// Source names the component that produced a search response.
type Source string

// Search source constants.
const (
	Recent  Source = "recent"
	Vector  Source = "vector"
	Lexical Source = "lexical"
)

// IsValid checks if the source is one of the supported values.
func (s Source) IsValid() bool {
	return s == Recent || s == Vector || s == Lexical
}

// Fallback explains why the orchestrator left the vector path.
type Fallback string

// Fallback reason constants.
const (
	None Fallback = "none"
	// QuotaExceeded: provider quota or local budget exhausted.
	QuotaExceeded   Fallback = "quota_exceeded"
	EmbeddingFailed Fallback = "embedding_failed"
	// NoVectorMatches: vector search ran but nothing was within the threshold.
	NoVectorMatches Fallback = "no_vector_matches"
	VectorError     Fallback = "vector_error"
)

// IsValid checks if the fallback reason is one of the supported values.
func (f Fallback) IsValid() bool {
	switch f {
	case None, QuotaExceeded, EmbeddingFailed, NoVectorMatches, VectorError:
		return true
	}
	return false
}
