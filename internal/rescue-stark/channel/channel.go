// Package channel implements the Fiat-Shamir transcript between the
// prover and the verifier. Every proof element the prover sends is mixed
// into a running hash state; verifier randomness (query indices, random
// linear-combination coefficients) is derived from that state, so both
// sides agree on it exactly when their transcripts agree.
package channel

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/vybium/rescue-stark/internal/rescue-stark/algebra"
	"github.com/vybium/rescue-stark/internal/rescue-stark/crypt"
)

// RecordKind tags the type of a transcript record
type RecordKind uint8

const (
	// RecordDigest is a commitment tree digest
	RecordDigest RecordKind = iota
	// RecordFieldElements is a batch of base field elements
	RecordFieldElements
	// RecordData is an opaque byte string (opened segment contents)
	RecordData
)

// Record is one prover-to-verifier message in the transcript
type Record struct {
	Kind RecordKind `json:"kind"`
	Data []byte     `json:"data"`
}

// Channel holds the shared Fiat-Shamir state
type Channel struct {
	state []byte
}

func newChannel() Channel {
	return Channel{state: []byte{0}}
}

// mix folds data into the channel state
func (c *Channel) mix(data []byte) {
	h := sha3.Sum256(append(append([]byte(nil), c.state...), data...))
	c.state = h[:]
}

// randomBytes draws n pseudo-random bytes from the channel state,
// advancing the state per 32-byte block
func (c *Channel) randomBytes(n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		h := sha3.Sum256(c.state)
		c.state = h[:]
		out = append(out, h[:]...)
	}
	return out[:n]
}

// State returns a copy of the current channel state
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state...)
}

// Seed mixes public context into the channel before any records are
// exchanged. Both sides seed with the same bytes, binding the whole
// transcript, and in particular the query draws, to the statement being
// proven.
func (c *Channel) Seed(data []byte) {
	c.mix(data)
}

// RandomExtensionElements draws n extension field elements, used as the
// random linear-combination coefficients of the composition polynomial
func (c *Channel) RandomExtensionElements(n int) []algebra.ExtensionElement {
	out := make([]algebra.ExtensionElement, n)
	for i := range out {
		// 64 bytes per element; SetBytes reduces each half mod p
		if _, err := out[i].SetBytes(c.randomBytes(2 * fp.Bytes)); err != nil {
			panic(fmt.Sprintf("channel randomness: %v", err))
		}
	}
	return out
}

// RandomQueries draws n query indices in [0, max)
func (c *Channel) RandomQueries(n int, max uint64) []uint64 {
	if max == 0 {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		buf := c.randomBytes(8)
		out[i] = binary.BigEndian.Uint64(buf) % max
	}
	return out
}

// ProverChannel is the prover's side of the transcript
type ProverChannel struct {
	Channel
	records []Record
}

// NewProverChannel creates an empty prover transcript
func NewProverChannel() *ProverChannel {
	return &ProverChannel{Channel: newChannel()}
}

func (p *ProverChannel) send(kind RecordKind, data []byte) {
	p.records = append(p.records, Record{Kind: kind, Data: append([]byte(nil), data...)})
	p.mix(data)
}

// SendDigest sends a commitment tree digest to the verifier
func (p *ProverChannel) SendDigest(d crypt.Digest) {
	p.send(RecordDigest, d.Bytes())
}

// SendFieldElements sends base field elements to the verifier
func (p *ProverChannel) SendFieldElements(elements []fp.Element) {
	p.send(RecordFieldElements, algebra.SerializeElements(elements))
}

// SendData sends an opaque byte string to the verifier
func (p *ProverChannel) SendData(data []byte) {
	p.send(RecordData, data)
}

// Proof returns the transcript accumulated so far
func (p *ProverChannel) Proof() []Record {
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}

// VerifierChannel replays a prover transcript on the verifier's side
type VerifierChannel struct {
	Channel
	records []Record
	pos     int
}

// NewVerifierChannel creates a verifier channel over a received transcript
func NewVerifierChannel(proof []Record) *VerifierChannel {
	records := make([]Record, len(proof))
	copy(records, proof)
	return &VerifierChannel{Channel: newChannel(), records: records}
}

func (v *VerifierChannel) receive(kind RecordKind) ([]byte, error) {
	if v.pos >= len(v.records) {
		return nil, fmt.Errorf("transcript exhausted: no record at position %d", v.pos)
	}
	rec := v.records[v.pos]
	if rec.Kind != kind {
		return nil, fmt.Errorf("transcript record %d has kind %d, expected %d", v.pos, rec.Kind, kind)
	}
	v.pos++
	v.mix(rec.Data)
	return rec.Data, nil
}

// ReceiveDigest reads a commitment tree digest from the transcript
func (v *VerifierChannel) ReceiveDigest() (crypt.Digest, error) {
	data, err := v.receive(RecordDigest)
	if err != nil {
		return crypt.Digest{}, err
	}
	return crypt.DigestFromBytes(data)
}

// ReceiveFieldElements reads count base field elements from the transcript
func (v *VerifierChannel) ReceiveFieldElements(count int) ([]fp.Element, error) {
	data, err := v.receive(RecordFieldElements)
	if err != nil {
		return nil, err
	}
	elements, err := algebra.DeserializeElements(data)
	if err != nil {
		return nil, err
	}
	if len(elements) != count {
		return nil, fmt.Errorf("expected %d field elements, transcript holds %d", count, len(elements))
	}
	return elements, nil
}

// ReceiveData reads an opaque byte string from the transcript
func (v *VerifierChannel) ReceiveData() ([]byte, error) {
	return v.receive(RecordData)
}
