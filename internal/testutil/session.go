package testutil

// DefaultSession is used when a scenario declares no session id.
const DefaultSession = "test-session-default"

// FixedSessionGenerator generates the same session id every time.
//
// This enables deterministic journal ids and golden snapshot comparison: the
// same scenario with the same FixedSessionGenerator produces byte-identical
// edit ids.
//
// Unlike engine.FixedGenerator which returns ids in sequence and panics when
// exhausted, this generator never runs out.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a new fixed session id generator.
//
// The id is typically set in the scenario YAML:
//
//	session: "scenario-0000-0001"
//
// If id is empty, Generate() returns DefaultSession.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSession
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements engine.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
