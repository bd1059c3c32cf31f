package sequencer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand returns its values in order, each reduced modulo n
type scriptedRand struct {
	vals []int
	pos  int
}

func (r *scriptedRand) Intn(n int) int {
	v := r.vals[r.pos%len(r.vals)]
	r.pos++
	return v % n
}

func advanceIndices(t *testing.T, s *Step, ticks int) []int {
	t.Helper()
	out := make([]int, ticks)
	for i := range out {
		_, err := s.Advance()
		require.NoError(t, err)
		out[i] = s.Index()
	}
	return out
}

func TestDownCyclesForward(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13), ModeDown, Options{})
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3, 0}, advanceIndices(t, s, 9))
}

func TestUpCyclesBackwardFromLast(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13), ModeUp, Options{})
	assert.Equal(t, []int{3, 2, 1, 0, 3, 2, 1, 0}, advanceIndices(t, s, 8))
}

func TestBothPingPongs(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13), ModeBoth, Options{})
	assert.Equal(t, []int{0, 1, 2, 3, 2, 1, 0, 1, 2, 3, 2}, advanceIndices(t, s, 11))
}

func TestBothSingleNoteStaysPut(t *testing.T) {
	s := NewStep(Notes(5), ModeBoth, Options{})
	assert.Equal(t, []int{0, 0, 0}, advanceIndices(t, s, 3))
}

func TestBothTwoNotes(t *testing.T) {
	s := NewStep(Notes(5, 6), ModeBoth, Options{})
	assert.Equal(t, []int{0, 1, 0, 1, 0}, advanceIndices(t, s, 5))
}

func TestBothDirectionSurvivesModeSwitch(t *testing.T) {
	s := NewStep(Notes(0, 1, 2, 3), ModeBoth, Options{})
	advanceIndices(t, s, 5) // 0 1 2 3 2, now heading down
	assert.Equal(t, -1, s.ModeSpecific().Direction)

	s.SetMode(ModeOne)
	advanceIndices(t, s, 2)
	s.SetMode(ModeBoth)
	assert.Equal(t, []int{1, 0, 1}, advanceIndices(t, s, 3))
}

func TestBothAfterDeletionStaysInRange(t *testing.T) {
	s := NewStep(Notes(0, 1, 2, 3, 4, 5), ModeBoth, Options{})
	advanceIndices(t, s, 6) // at index 5
	require.NoError(t, s.DeleteNote(5))
	require.NoError(t, s.DeleteNote(4))
	require.NoError(t, s.DeleteNote(3))

	for _, idx := range advanceIndices(t, s, 10) {
		assert.True(t, idx >= 0 && idx < s.Len(), "index %d out of range", idx)
	}
}

func TestRandomStaysInRangeAndSpreads(t *testing.T) {
	s := NewStep(Notes(0, 1, 2, 3, 4), ModeRandom, Options{}, WithRand(rand.New(rand.NewSource(42))))
	counts := make([]int, 5)
	const n = 5000
	for _, idx := range advanceIndices(t, s, n) {
		require.True(t, idx >= 0 && idx < 5)
		counts[idx]++
	}
	for i, c := range counts {
		assert.InDelta(t, n/5, c, n/5*0.2, "slot %d picked %d times", i, c)
	}
}

func TestRandomUsesInjectedSource(t *testing.T) {
	s := NewStep(Notes(0, 1, 2, 3), ModeRandom, Options{}, WithRand(&scriptedRand{vals: []int{2, 0, 3, 3, 1}}))
	assert.Equal(t, []int{2, 0, 3, 3, 1}, advanceIndices(t, s, 5))
}

func TestDrunkWalks(t *testing.T) {
	// Intn(3)-1: 2 -> +1, 0 -> -1, 1 -> 0
	r := &scriptedRand{vals: []int{2, 2, 1, 0, 0, 0}}
	s := NewStep(Notes(0, 1, 2, 3), ModeDrunk, Options{}, WithRand(r))
	// first advance settles on 0 without consuming randomness
	assert.Equal(t, []int{0, 1, 2, 2, 1, 0, 3}, advanceIndices(t, s, 7))
}

func TestDrunkWithoutWrapReflects(t *testing.T) {
	r := &scriptedRand{vals: []int{0, 0, 2, 2, 2, 2}}
	s := NewStep(Notes(0, 1, 2), ModeDrunk, Options{Wrap: Bool(false)}, WithRand(r))
	// 0, -1 reflects to 1, -1 -> 0, +1 -> 1, +1 -> 2, +1 reflects to 1, +1 -> 2
	assert.Equal(t, []int{0, 1, 0, 1, 2, 1, 2}, advanceIndices(t, s, 7))
}

func TestDrunkWithoutWrapNeverLeaves(t *testing.T) {
	s := NewStep(Notes(0, 1, 2, 3), ModeDrunk, Options{Wrap: Bool(false)}, WithRand(rand.New(rand.NewSource(1))))
	prev := -1
	for _, idx := range advanceIndices(t, s, 2000) {
		require.True(t, idx >= 0 && idx < 4)
		if prev >= 0 {
			d := idx - prev
			assert.True(t, d >= -1 && d <= 1, "jumped from %d to %d", prev, idx)
		}
		prev = idx
	}
}

func TestDrunkWithWrapCrossesEnds(t *testing.T) {
	r := &scriptedRand{vals: []int{0}}
	s := NewStep(Notes(0, 1, 2), ModeDrunk, Options{Wrap: Bool(true)}, WithRand(r))
	assert.Equal(t, []int{0, 2, 1, 0, 2}, advanceIndices(t, s, 5))
}

func TestOneAndPatternModesSettleOnFirst(t *testing.T) {
	for _, m := range []Mode{ModeOne, ModeMimic, ModeSkip, ModeMute} {
		s := NewStep(Notes(7, 8, 9), m, Options{})
		assert.Equal(t, []int{0, 0, 0}, advanceIndices(t, s, 3), m)
	}
}

func TestOneHoldsQueuedPosition(t *testing.T) {
	s := NewStep(Notes(7, 8, 9), ModeOne, Options{})
	s.Queue(2)
	assert.Equal(t, []int{2, 2, 2}, advanceIndices(t, s, 3))
}

func TestRepeatHoldsNote(t *testing.T) {
	s := NewStep(Notes(10, 20, 30), ModeDown, Options{Repeat: Int(3)})
	var got []int
	for i := 0; i < 7; i++ {
		n, err := s.Advance()
		require.NoError(t, err)
		got = append(got, n.Num)
	}
	assert.Equal(t, []int{10, 10, 10, 20, 20, 20, 30}, got)
}

func TestRepeatOneIsNoHold(t *testing.T) {
	s := NewStep(Notes(10, 20), ModeDown, Options{Repeat: Int(1)})
	assert.Equal(t, []int{0, 1, 0, 1}, advanceIndices(t, s, 4))
}

func TestRepeatCachesCurrentAcrossEdits(t *testing.T) {
	s := NewStep(Notes(10, 20), ModeDown, Options{Repeat: Int(2)})
	n, _ := s.Advance()
	assert.Equal(t, N(10), n)

	require.NoError(t, s.SetNote(0, N(99)))
	n, _ = s.Advance()
	assert.Equal(t, N(10), n, "held note comes from the cache")
}

func TestQueueOverridesOnce(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13, 14), ModeDown, Options{})
	advanceIndices(t, s, 1) // index 0

	s.Queue(2)
	n, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, N(12), n)
	assert.Equal(t, -1, s.Queued())

	assert.Equal(t, []int{3, 4, 0}, advanceIndices(t, s, 3))
}

func TestQueueIgnoresModeAndRepeat(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13), ModeUp, Options{Repeat: Int(4)})
	first, _ := s.Advance()
	assert.Equal(t, N(13), first)

	s.Queue(1)
	n, _ := s.Advance()
	assert.Equal(t, N(11), n, "override sounds even inside a repeat window")
}

func TestQueueBypassesRepeatThenHolds(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13), ModeDown, Options{Repeat: Int(3)})
	s.Queue(2)
	var got []int
	for i := 0; i < 4; i++ {
		n, err := s.Advance()
		require.NoError(t, err)
		got = append(got, n.Num)
	}
	// the override tick counts towards the repeat window
	assert.Equal(t, []int{12, 12, 13, 13}, got)
}

func TestQueueClampsToLastIndex(t *testing.T) {
	s := NewStep(Notes(10, 11, 12), ModeDown, Options{})
	s.Queue(9)
	n, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, N(12), n)
	assert.Equal(t, 2, s.Index())
}

func TestQueueRacesDeletion(t *testing.T) {
	s := NewStep(Notes(10, 11, 12, 13), ModeDown, Options{})
	s.Queue(3)
	require.NoError(t, s.DeleteNote(3))
	n, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, N(12), n)
}

func TestCounterStaysWithinRepeat(t *testing.T) {
	s := NewStep(Notes(1, 2, 3), ModeDown, Options{Repeat: Int(2)})
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			s.Queue(i % 4)
		}
		_, err := s.Advance()
		require.NoError(t, err)
		assert.True(t, s.counter >= 1 && s.counter <= 2, "counter %d", s.counter)
	}
}

func TestAdvanceEmptyIsInvalidState(t *testing.T) {
	s := NewStep(Notes(1), ModeDown, Options{})
	require.NoError(t, s.DeleteNote(0))

	_, err := s.Advance()
	assert.ErrorIs(t, err, ErrInvalidState)

	s.Queue(0)
	_, err = s.Advance()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeletionShrinksBelowIndex(t *testing.T) {
	for _, m := range []Mode{ModeDown, ModeUp, ModeOne, ModeDrunk, ModeRandom} {
		s := NewStep(Notes(0, 1, 2, 3, 4), m, Options{Wrap: Bool(false)}, WithRand(rand.New(rand.NewSource(3))))
		s.Queue(4)
		advanceIndices(t, s, 1)
		require.NoError(t, s.DeleteNote(4))
		require.NoError(t, s.DeleteNote(3))

		for _, idx := range advanceIndices(t, s, 10) {
			assert.True(t, idx >= 0 && idx < 3, "%s: index %d", m, idx)
		}
	}
}

func TestRestSlots(t *testing.T) {
	s := NewStep([]Note{N(1), Rest, N(3)}, ModeDown, Options{})
	var got []Note
	for i := 0; i < 3; i++ {
		n, err := s.Advance()
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []Note{N(1), Rest, N(3)}, got)
}

func TestSetModeRejectsUnknown(t *testing.T) {
	s := NewStep(Notes(1, 2), ModeUp, Options{})
	s.SetMode(Mode("SIDEWAYS"))
	assert.Equal(t, ModeUp, s.Mode())

	s.SetMode(ModeBoth)
	assert.Equal(t, ModeBoth, s.Mode())
}

func TestNewStepWithInvalidModeFallsBackToDown(t *testing.T) {
	s := NewStep(Notes(1, 2), Mode("nope"), Options{})
	assert.Equal(t, ModeDown, s.Mode())
}

func TestNoteEditing(t *testing.T) {
	s := NewStep(Notes(1, 2, 3), ModeDown, Options{})

	s.AddNote()
	assert.Equal(t, Notes(1, 2, 3, 0), s.Notes())

	require.NoError(t, s.SetNote(3, N(9)))
	require.NoError(t, s.DeleteNote(0))
	assert.Equal(t, Notes(2, 3, 9), s.Notes())

	assert.ErrorIs(t, s.SetNote(3, N(1)), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.DeleteNote(-1), ErrIndexOutOfRange)

	s.SetNotes(Notes(5))
	assert.Equal(t, Notes(5), s.Notes())
}

func TestNotesReturnsCopy(t *testing.T) {
	src := Notes(1, 2)
	s := NewStep(src, ModeDown, Options{})
	src[0] = N(42)
	got := s.Notes()
	got[1] = N(42)
	assert.Equal(t, Notes(1, 2), s.Notes())
}

func TestReset(t *testing.T) {
	s := NewStep(Notes(1, 2, 3), ModeDown, Options{Repeat: Int(2)})
	advanceIndices(t, s, 3)
	s.Reset()
	assert.Equal(t, -1, s.Index())
	assert.Equal(t, Rest, s.Current())
	assert.Equal(t, []int{0, 0, 1}, advanceIndices(t, s, 3))
}

func TestSetRepeatClamps(t *testing.T) {
	s := NewStep(Notes(1, 2), ModeDown, Options{Repeat: Int(4)})
	advanceIndices(t, s, 3)
	s.SetRepeat(0)
	assert.Equal(t, 1, s.ModeSpecific().Repeat)
	assert.Equal(t, []int{1, 0}, advanceIndices(t, s, 2))
}
