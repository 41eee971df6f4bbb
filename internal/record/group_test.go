package record

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// seqSource replays fixed draws.
type seqSource struct {
	draws []float64
	calls int
}

func (s *seqSource) Float64() float64 {
	v := s.draws[s.calls%len(s.draws)]
	s.calls++
	return v
}

func TestGrouper_Synthetic(t *testing.T) {
	src := &seqSource{draws: []float64{0.9, 0.1, 0.29, 0.3, 0.5}}
	g := Grouper{P: DefaultIncrementProbability, Rand: src}

	state := NewGroupState()
	assert.Equal(t, 1, state.Current)

	var ids []string
	for range 5 {
		var id string
		id, state = g.Assign(state, Parsed{})
		ids = append(ids, id)
	}

	// 0.1 and 0.29 close a group; the draw applies after the row is labelled.
	assert.Equal(t, []string{"1", "1", "2", "3", "3"}, ids)
	assert.Equal(t, 3, state.Current)
	assert.Equal(t, 5, src.calls)
}

func TestGrouper_StateIsAValue(t *testing.T) {
	g := Grouper{P: 1, Rand: &seqSource{draws: []float64{0}}}

	start := NewGroupState()
	id, next := g.Assign(start, Parsed{})
	assert.Equal(t, "1", id)
	assert.Equal(t, 2, next.Current)
	assert.Equal(t, 1, start.Current)

	// Replaying an old state gives the same id.
	id, _ = g.Assign(start, Parsed{})
	assert.Equal(t, "1", id)
}

func TestGrouper_ExplicitStudy(t *testing.T) {
	src := &seqSource{draws: []float64{0}}
	g := Grouper{P: DefaultIncrementProbability, Rand: src}
	state := NewGroupState()

	id, state := g.Assign(state, Parsed{Study: "Site, A", HasStudy: true})
	assert.Equal(t, "Site; A", id)
	id, state = g.Assign(state, Parsed{Study: "", HasStudy: true})
	assert.Equal(t, "", id)

	assert.Equal(t, 0, src.calls, "explicit study ids draw nothing")
	assert.Equal(t, NewGroupState(), state)
}

func TestGrouper_Bounds(t *testing.T) {
	always := Grouper{P: 1, Rand: rand.New(rand.NewPCG(1, 2))}
	never := Grouper{P: 0, Rand: rand.New(rand.NewPCG(1, 2))}

	a, n := NewGroupState(), NewGroupState()
	for i := 1; i <= 4; i++ {
		var rec Record
		rec, a = always.Record(a, Parsed{N: i})
		assert.Equal(t, Record{N: i, StudyID: strconv.Itoa(i)}, rec)

		var id string
		id, n = never.Assign(n, Parsed{})
		assert.Equal(t, "1", id)
	}
}

func TestGrouper_SeededRepeatable(t *testing.T) {
	run := func() []string {
		g := Grouper{P: DefaultIncrementProbability, Rand: rand.New(rand.NewPCG(42, 7))}
		state := NewGroupState()
		out := make([]string, 50)
		for i := range out {
			out[i], state = g.Assign(state, Parsed{})
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestSanitizeStudy(t *testing.T) {
	assert.Equal(t, "Site; A", SanitizeStudy("Site, A"))
	assert.Equal(t, "a;b;c", SanitizeStudy("a,b,c"))
	assert.Equal(t, "line one line two", SanitizeStudy("line one\r\nline two"))
	assert.Equal(t, "x y z", SanitizeStudy("x\ny\rz"))
	assert.Equal(t, "plain", SanitizeStudy("plain"))
}
