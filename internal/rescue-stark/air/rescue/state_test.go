package rescue

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

func randomState(t *testing.T) State {
	t.Helper()
	var s State
	for i := range s {
		if _, err := s[i].SetRandom(); err != nil {
			t.Fatalf("Failed to sample state element: %v", err)
		}
	}
	return s
}

func randomWord(t *testing.T) Word {
	t.Helper()
	var w Word
	for i := range w {
		if _, err := w[i].SetRandom(); err != nil {
			t.Fatalf("Failed to sample word element: %v", err)
		}
	}
	return w
}

// TestThirdRootInvertsCube tests that the batched third root undoes cubing
func TestThirdRootInvertsCube(t *testing.T) {
	s := randomState(t)

	back := s.Cube().BatchedThirdRoot()
	if back != s {
		t.Error("BatchedThirdRoot must invert Cube")
	}

	forward := s.BatchedThirdRoot().Cube()
	if forward != s {
		t.Error("Cube must invert BatchedThirdRoot")
	}
}

// TestLinearLayerInvertible tests that mdsInverse undoes the linear layer
func TestLinearLayerInvertible(t *testing.T) {
	constants()
	s := randomState(t)

	mixed := s.LinearLayer()
	back := State(mulMatrixVector(&mdsInverse, (*[StateSize]fp.Element)(&mixed)))
	if back != s {
		t.Error("mdsInverse must invert the linear layer")
	}
}

// TestHashWordDeterministic tests determinism and input sensitivity
func TestHashWordDeterministic(t *testing.T) {
	carry := randomWord(t)
	word := randomWord(t)

	a := HashWord(carry, word)
	b := HashWord(carry, word)
	if a != b {
		t.Error("Hashing the same inputs twice must agree")
	}

	var mutated Word
	mutated = word
	var one fp.Element
	one.SetOne()
	mutated[2].Add(&mutated[2], &one)
	c := HashWord(carry, mutated)
	if a == c {
		t.Error("Changing one input element must change the output")
	}

	d := HashWord(word, carry)
	if a == d {
		t.Error("Swapping carry and word must change the output")
	}
}

// TestHashRoundsEmitsMiddleStates tests that the permutation emits one
// middle state per round and that consecutive states are linked by the
// half-round maps
func TestHashRoundsEmitsMiddleStates(t *testing.T) {
	constants()
	init := initialState(randomWord(t), randomWord(t))

	var middles []State
	final := hashRounds(init, func(round int, middle State) {
		if round != len(middles)+1 {
			t.Fatalf("Emitted round %d out of order", round)
		}
		middles = append(middles, middle)
	})
	if len(middles) != NumRounds {
		t.Fatalf("Expected %d middle states, got %d", NumRounds, len(middles))
	}

	if middles[0] != init.firstHalfRound(1) {
		t.Error("First middle state must be the first half-round of the init state")
	}
	for r := 2; r <= NumRounds; r++ {
		expected := middles[r-2].secondHalfRound(r - 1).firstHalfRound(r)
		if middles[r-1] != expected {
			t.Errorf("Middle state of round %d is not linked to round %d", r, r-1)
		}
	}
	if final != middles[NumRounds-1].secondHalfRound(NumRounds) {
		t.Error("Final state must complete the last round")
	}
}

// TestInitialStateLayout tests the [carry || word || zeros] layout
func TestInitialStateLayout(t *testing.T) {
	carry := randomWord(t)
	word := randomWord(t)

	s := initialState(carry, word)
	for i := 0; i < WordSize; i++ {
		if !s[i].Equal(&carry[i]) {
			t.Errorf("State element %d must hold the carry", i)
		}
		if !s[WordSize+i].Equal(&word[i]) {
			t.Errorf("State element %d must hold the input word", WordSize+i)
		}
		if !s[2*WordSize+i].IsZero() {
			t.Errorf("Capacity element %d must be zero", 2*WordSize+i)
		}
	}
}

// TestOutputWord tests output word extraction
func TestOutputWord(t *testing.T) {
	s := randomState(t)
	w := s.OutputWord()
	for i := 0; i < WordSize; i++ {
		if !w[i].Equal(&s[i]) {
			t.Errorf("Output word element %d does not match the state", i)
		}
	}
}
