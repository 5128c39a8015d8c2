package db

// VectorQuery is the input for a nearest-neighbour query on a named vector.
// When Vector is empty the server embeds Text with Model (server-side inference).
type VectorQuery struct {
	Collection     string
	Using          string
	Text           string
	Model          string
	Vector         []float32
	Limit          int
	ScoreThreshold *float64
}

// Inference reports whether the query relies on server-side embedding.
func (q *VectorQuery) Inference() bool { return len(q.Vector) == 0 }
