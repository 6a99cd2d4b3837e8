package rescuestark

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/rescue-stark/internal/rescue-stark/air"
	"github.com/vybium/rescue-stark/internal/rescue-stark/air/rescue"
	"github.com/vybium/rescue-stark/internal/rescue-stark/algebra"
	"github.com/vybium/rescue-stark/internal/rescue-stark/channel"
	"github.com/vybium/rescue-stark/internal/rescue-stark/commitment"
	"github.com/vybium/rescue-stark/internal/rescue-stark/logger"
	"github.com/vybium/rescue-stark/internal/rescue-stark/utils"
)

// rowBytes is the serialized size of one trace row: all columns of the
// row laid out as big-endian field elements. A row is the unit the
// commitment scheme treats as one element.
const rowBytes = rescue.NumColumns * algebra.ElementBytes

// Prover produces proofs that a Rescue hash chain evaluates to a
// claimed output.
type Prover struct {
	config *utils.Config
}

// NewProver creates a prover with the given configuration
func NewProver(config *utils.Config) (*Prover, error) {
	if config == nil {
		config = utils.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid prover configuration", err)
	}
	return &Prover{config: config.Clone()}, nil
}

// Config returns a copy of the prover's configuration
func (p *Prover) Config() *utils.Config {
	return p.config.Clone()
}

// Prove generates a proof that hashing the witness chain yields the
// output returned alongside the proof. The witness must hold
// ChainLength+1 words: the initial carry followed by the chain words.
func (p *Prover) Prove(witness Witness) (*Proof, *Claim, error) {
	log := logger.Logger()

	output, err := rescue.PublicInputFromPrivateInput(witness, p.config.ChainLength)
	if err != nil {
		return nil, nil, newError(ErrInvalidWitness, "computing public input from witness", err)
	}
	claim := &Claim{Output: output, ChainLength: p.config.ChainLength}

	rescueAir, err := rescue.NewRescueAir(output, p.config.ChainLength)
	if err != nil {
		return nil, nil, newError(ErrProofGeneration, "constructing AIR", err)
	}

	trace, err := rescueAir.GetTrace(witness)
	if err != nil {
		return nil, nil, newError(ErrTraceGeneration, "generating execution trace", err)
	}
	if err := rescueAir.CheckTrace(trace); err != nil {
		return nil, nil, newError(ErrTraceGeneration, "trace does not satisfy constraints", err)
	}
	log.Debug().
		Uint64("trace_length", trace.Length()).
		Uint64("chain_length", p.config.ChainLength).
		Msg("execution trace generated")

	ch := channel.NewProverChannel()
	ch.Seed(claimSeed(claim))

	traceLength := rescueAir.TraceLength()
	nSegments, nElementsInSegment := commitment.SuggestSegmentSplit(traceLength, rowBytes)
	scheme, err := commitment.MakeCommitmentSchemeProver(rowBytes, nElementsInSegment, nSegments, ch)
	if err != nil {
		return nil, nil, newError(ErrProofGeneration, "building commitment scheme", err)
	}
	if err := scheme.Commit(serializeTrace(trace)); err != nil {
		return nil, nil, newError(ErrProofGeneration, "committing to execution trace", err)
	}

	coefficients := ch.RandomExtensionElements(rescueAir.NumRandomCoefficients())
	composition, err := rescueAir.CreateCompositionPolynomial(coefficients)
	if err != nil {
		return nil, nil, newError(ErrProofGeneration, "creating composition polynomial", err)
	}
	// The trace satisfies every constraint, so the composition
	// polynomial vanishes on the trace domain. Evaluating it here is a
	// cheap self-check before spending queries on the transcript.
	values, err := composition.EvalOnTrace(trace)
	if err != nil {
		return nil, nil, newError(ErrProofGeneration, "evaluating composition polynomial", err)
	}
	for t, v := range values {
		if !v.IsZero() {
			return nil, nil, newError(ErrProofGeneration,
				fmt.Sprintf("composition polynomial does not vanish at row %d", t), nil)
		}
	}

	rows := ch.RandomQueries(p.config.NumQueries, traceLength)
	if err := scheme.Decommit(queriedRows(rows, traceLength)); err != nil {
		return nil, nil, newError(ErrProofGeneration, "decommitting queried rows", err)
	}

	proof := &Proof{Records: ch.Proof()}
	log.Info().
		Int("records", len(proof.Records)).
		Int("queries", p.config.NumQueries).
		Msg("proof generated")
	return proof, claim, nil
}

// claimSeed serializes a claim into the transcript seed: the output
// word followed by the big-endian chain length
func claimSeed(claim *Claim) []byte {
	seed := algebra.SerializeElements(claim.Output[:])
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], claim.ChainLength)
	return append(seed, length[:]...)
}

// queriedRows expands query rows to the row set the constraint mask
// touches: each queried row t together with its successor (t+1) mod n.
func queriedRows(rows []uint64, traceLength uint64) []uint64 {
	out := make([]uint64, 0, 2*len(rows))
	for _, t := range rows {
		out = append(out, t, (t+1)%traceLength)
	}
	return out
}

// serializeTrace lays the trace out row-major as big-endian field
// element bytes
func serializeTrace(trace *air.Trace) []byte {
	out := make([]byte, 0, trace.Length()*rowBytes)
	for t := uint64(0); t < trace.Length(); t++ {
		out = append(out, algebra.SerializeElements(trace.Row(t))...)
	}
	return out
}

// NewRandomWitness samples a uniformly random witness for a chain of
// the given length
func NewRandomWitness(chainLength uint64) (Witness, error) {
	witness := make(Witness, chainLength+1)
	for i := range witness {
		for j := range witness[i] {
			if _, err := witness[i][j].SetRandom(); err != nil {
				return nil, fmt.Errorf("sampling witness word: %w", err)
			}
		}
	}
	return witness, nil
}
