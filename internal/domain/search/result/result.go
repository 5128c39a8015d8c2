package result

// Match is a single scored point as returned by the vector database.
// Metadata is the payload's nested "metadata" object, Document the optional
// raw "document" string stored next to it.
type Match struct {
	id       string
	score    float64
	metadata map[string]any
	document string
}

// New creates a match. A nil metadata map is replaced by an empty one.
func New(id string, score float64, metadata map[string]any, document string) Match {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Match{id: id, score: score, metadata: metadata, document: document}
}

// ID returns the point identifier (numeric ids are rendered in base 10).
func (m *Match) ID() string { return m.id }

// Score returns the relevance score; higher is better.
func (m *Match) Score() float64 { return m.score }

// Metadata returns the raw metadata mapping.
func (m *Match) Metadata() map[string]any { return m.metadata }

// Document returns the raw document text, or "" when the payload had none.
func (m *Match) Document() string { return m.document }
