package testutil

// FixedRequestIDs returns the same request id every time.
//
// Booking transactions log each state transition with a request id; a fixed
// id keeps log output and golden snapshots byte-identical across runs.
//
// Thread-safety: FixedRequestIDs is stateless and safe for concurrent use.
type FixedRequestIDs struct {
	id string
}

// NewFixedRequestIDs creates a fixed generator. If id is empty, Generate
// returns "test-request".
func NewFixedRequestIDs(id string) *FixedRequestIDs {
	if id == "" {
		id = "test-request"
	}
	return &FixedRequestIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedRequestIDs) Generate() string {
	return g.id
}
