package rescue

import "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

// Word is a hash input/output tuple of 4 field elements
type Word [WordSize]fp.Element

// Witness is the prover's private input: the sequence of words folded
// through the hash chain
type Witness []Word

// State is one row of the Rescue permutation state
type State [StateSize]fp.Element

// Mul returns the element-wise product of two states
func (s State) Mul(other State) State {
	var out State
	for i := range out {
		out[i].Mul(&s[i], &other[i])
	}
	return out
}

// Cube returns the element-wise cube of the state
func (s State) Cube() State {
	var out State
	for i := range out {
		out[i].Square(&s[i])
		out[i].Mul(&out[i], &s[i])
	}
	return out
}

// BatchedThirdRoot returns the third roots of all elements of the state.
// All 12 exponentiations share the exponent (2p-1)/3, so the square-and-
// multiply scan runs once over the exponent bits with the whole state in
// lockstep.
func (s State) BatchedThirdRoot() State {
	constants()

	var out State
	for i := range out {
		out[i].SetOne()
	}
	for bit := cubeInverseExponent.BitLen() - 1; bit >= 0; bit-- {
		for i := range out {
			out[i].Square(&out[i])
		}
		if cubeInverseExponent.Bit(bit) == 1 {
			for i := range out {
				out[i].Mul(&out[i], &s[i])
			}
		}
	}
	return out
}

// LinearLayer returns mds * s
func (s State) LinearLayer() State {
	return State(mulMatrixVector(&mds, (*[StateSize]fp.Element)(&s)))
}

// AddConstants returns s plus a round constant vector
func (s State) AddConstants(k *[StateSize]fp.Element) State {
	var out State
	for i := range out {
		out[i].Add(&s[i], &k[i])
	}
	return out
}

// OutputWord returns the first 4 elements of the state
func (s State) OutputWord() Word {
	var w Word
	copy(w[:], s[:WordSize])
	return w
}

// firstHalfRound applies x -> mds * x^(1/3) + K0 of the given round
// (1-based), producing the middle-of-round state
func (s State) firstHalfRound(round int) State {
	out := s.BatchedThirdRoot().LinearLayer()
	return out.AddConstants(&roundConstantsFirst[round-1])
}

// secondHalfRound applies x -> mds * x^3 + K1 of the given round
// (1-based), completing the round
func (s State) secondHalfRound(round int) State {
	out := s.Cube().LinearLayer()
	return out.AddConstants(&roundConstantsSecond[round-1])
}

// initialState assembles a hash invocation's starting state
// [carry || word || 0,0,0,0]
func initialState(carry, word Word) State {
	var s State
	copy(s[:WordSize], carry[:])
	copy(s[WordSize:2*WordSize], word[:])
	return s
}

// hashRounds runs the full 10-round permutation from an initial state,
// recording each middle-of-round state through the emit callback, and
// returns the final state
func hashRounds(init State, emit func(round int, middle State)) State {
	m := init.firstHalfRound(1)
	if emit != nil {
		emit(1, m)
	}
	for r := 2; r <= NumRounds; r++ {
		m = m.secondHalfRound(r - 1).firstHalfRound(r)
		if emit != nil {
			emit(r, m)
		}
	}
	return m.secondHalfRound(NumRounds)
}

// HashWord computes one Rescue hash invocation H(carry, word)
func HashWord(carry, word Word) Word {
	constants()
	return hashRounds(initialState(carry, word), nil).OutputWord()
}
