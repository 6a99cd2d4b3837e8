package rescuestark

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"

	"github.com/vybium/rescue-stark/internal/rescue-stark/air/rescue"
	"github.com/vybium/rescue-stark/internal/rescue-stark/channel"
	"github.com/vybium/rescue-stark/internal/rescue-stark/utils"
)

// Word is a hash word of four field elements.
type Word = rescue.Word

// Witness is the private input of the prover: the chain of words whose
// iterated hash is the claimed output.
type Witness = rescue.Witness

// Config is re-exported for callers constructing provers and verifiers.
type Config = utils.Config

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// Claim is the public statement a proof attests to: hashing a chain of
// ChainLength words yields Output.
type Claim struct {
	Output      Word
	ChainLength uint64
}

// ClaimJSON is the wire representation of a Claim.
type ClaimJSON struct {
	Output      []string `json:"output"`
	ChainLength uint64   `json:"chain_length"`
}

// Proof is a transcript of the prover's interaction with the channel.
type Proof struct {
	Records []channel.Record `json:"records"`
}

// ToJSON converts a claim to its wire representation.
func (c *Claim) ToJSON() *ClaimJSON {
	out := make([]string, len(c.Output))
	for i := range c.Output {
		out[i] = ElementToHex(&c.Output[i])
	}
	return &ClaimJSON{Output: out, ChainLength: c.ChainLength}
}

// FromJSON populates a claim from its wire representation.
func (c *Claim) FromJSON(j *ClaimJSON) error {
	if len(j.Output) != len(c.Output) {
		return newError(ErrInvalidProof, fmt.Sprintf("claim output must have %d words, got %d", len(c.Output), len(j.Output)), nil)
	}
	for i, s := range j.Output {
		e, err := ElementFromHex(s)
		if err != nil {
			return newError(ErrInvalidProof, "invalid claim output element", err)
		}
		c.Output[i] = e
	}
	c.ChainLength = j.ChainLength
	return nil
}

// ElementToHex encodes a field element as a 0x-prefixed big-endian hex string.
func ElementToHex(e *fp.Element) string {
	b := e.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

// ElementFromHex decodes a 0x-prefixed big-endian hex string into a field element.
func ElementFromHex(s string) (fp.Element, error) {
	var e fp.Element
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return e, fmt.Errorf("decoding hex element: %w", err)
	}
	if err := e.SetBytesCanonical(padLeft(b)); err != nil {
		return e, fmt.Errorf("non-canonical element encoding: %w", err)
	}
	return e, nil
}

func padLeft(b []byte) []byte {
	if len(b) >= fp.Bytes {
		return b[len(b)-fp.Bytes:]
	}
	out := make([]byte, fp.Bytes)
	copy(out[fp.Bytes-len(b):], b)
	return out
}
