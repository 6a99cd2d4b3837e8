// Package crypt provides the fixed-size digest type used as the node
// function of the packaging commitment tree. Digests are 160-bit Blake2b
// outputs, keeping authentication paths short while staying collision
// resistant at the 80-bit birthday bound the outer protocol targets.
package crypt

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// DigestNumBytes is the size of a commitment tree node in bytes
const DigestNumBytes = 20

// Digest is a fixed-size hash value
type Digest [DigestNumBytes]byte

// DigestFromBytes initializes a digest from a raw byte slice
func DigestFromBytes(data []byte) (Digest, error) {
	var d Digest
	if len(data) != DigestNumBytes {
		return d, fmt.Errorf("invalid digest initialization length: expected %d, got %d", DigestNumBytes, len(data))
	}
	copy(d[:], data)
	return d, nil
}

// HashBytesWithLength hashes an arbitrary byte string into a digest
func HashBytesWithLength(data []byte) Digest {
	h, err := blake2b.New(DigestNumBytes, nil)
	if err != nil {
		// blake2b.New only fails for invalid digest sizes or keys
		panic(fmt.Sprintf("blake2b init: %v", err))
	}
	h.Write(data)

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// HashPair hashes two digests into their parent node
func HashPair(left, right Digest) Digest {
	var buf [2 * DigestNumBytes]byte
	copy(buf[:DigestNumBytes], left[:])
	copy(buf[DigestNumBytes:], right[:])
	return HashBytesWithLength(buf[:])
}

// Equal reports whether two digests are identical
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d[:], other[:])
}

// Bytes returns the digest as a byte slice
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestNumBytes)
	copy(out, d[:])
	return out
}

// String returns the canonical hex representation of the digest
func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}
