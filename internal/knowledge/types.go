package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SourceType identifies the kind of entity an embedding row came from.
type SourceType string

// Known source types. Adding a kind means adding a Metadata variant and
// extending decodeMetadata; the compiler then flags every switch that
// needs a new case.
const (
	SourceTypeIssue      SourceType = "issue"
	SourceTypeRepository SourceType = "repository"
)

// ErrUnknownSourceType reports a row whose source_type has no metadata
// variant.
var ErrUnknownSourceType = errors.New("unknown source type")

// Metadata is the denormalized display payload attached to an embedding
// row. It is a sealed union: exactly IssueMetadata or RepositoryMetadata,
// discriminated by the row's source type.
type Metadata interface {
	SourceType() SourceType
}

// IssueMetadata describes a chunk embedded from a GitHub issue.
type IssueMetadata struct {
	Title       string `json:"title"`
	Repository  string `json:"repository"`
	State       string `json:"state"`
	URL         string `json:"url"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// SourceType implements Metadata.
func (IssueMetadata) SourceType() SourceType { return SourceTypeIssue }

// RepositoryMetadata describes an embedded repository summary.
type RepositoryMetadata struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Stars    int    `json:"stars"`
	URL      string `json:"url"`
}

// SourceType implements Metadata.
func (RepositoryMetadata) SourceType() SourceType { return SourceTypeRepository }

// Record is one embeddable segment bound for the store: the exact text
// that was (or will be) embedded, its vector, and its provenance.
//
// UserID scopes the row to its owning tenant. It is a first-class column,
// never a key inside the metadata blob, so no query can forget it.
type Record struct {
	Content    string
	Vector     []float32
	SourceType SourceType
	SourceID   int64
	UserID     int64
	Metadata   Metadata
}

// Validate reports structural problems that would corrupt the index.
func (r Record) Validate() error {
	if r.Content == "" {
		return errors.New("record content is empty")
	}
	if r.UserID == 0 {
		return errors.New("record has no user id")
	}
	if r.Metadata == nil {
		return errors.New("record has no metadata")
	}
	if r.Metadata.SourceType() != r.SourceType {
		return fmt.Errorf("metadata variant %q does not match source type %q",
			r.Metadata.SourceType(), r.SourceType)
	}
	return nil
}

// Result is a single search hit: the stored content plus its cosine
// similarity to the query vector.
type Result struct {
	Content    string
	SourceType SourceType
	SourceID   int64
	Metadata   Metadata
	Similarity float64
	CreatedAt  time.Time
}

// Stats is the operational breakdown of the embeddings table.
type Stats struct {
	Total        int64
	BySourceType map[SourceType]int64
}

// decodeMetadata unmarshals a JSONB metadata payload into the variant
// matching sourceType.
func decodeMetadata(sourceType SourceType, raw []byte) (Metadata, error) {
	switch sourceType {
	case SourceTypeIssue:
		var m IssueMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decoding issue metadata: %w", err)
		}
		return m, nil
	case SourceTypeRepository:
		var m RepositoryMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decoding repository metadata: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceType, sourceType)
	}
}

// SearchOption configures Search using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit         int32
	minSimilarity float64
	timeout       time.Duration
}

// Search defaults. Seven results at a 0.3 floor is enough context for
// grounded answers without flooding the prompt.
const (
	DefaultSearchLimit   int32 = 7
	DefaultMinSimilarity       = 0.3
	defaultSearchTimeout       = 10 * time.Second
)

// WithLimit caps the number of results returned.
func WithLimit(limit int32) SearchOption {
	return func(c *searchConfig) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithMinSimilarity drops results whose cosine similarity falls below
// the threshold.
func WithMinSimilarity(min float64) SearchOption {
	return func(c *searchConfig) {
		c.minSimilarity = min
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		limit:         DefaultSearchLimit,
		minSimilarity: DefaultMinSimilarity,
		timeout:       defaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
