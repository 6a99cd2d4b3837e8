package algebra

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// ElementBytes is the canonical serialized size of a base field element
const ElementBytes = fp.Bytes

// SerializeElements encodes field elements as concatenated canonical
// big-endian byte strings. This is the form the commitment scheme hashes.
func SerializeElements(elements []fp.Element) []byte {
	out := make([]byte, 0, len(elements)*ElementBytes)
	for i := range elements {
		b := elements[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// DeserializeElements decodes field elements from the canonical encoding
func DeserializeElements(data []byte) ([]fp.Element, error) {
	if len(data)%ElementBytes != 0 {
		return nil, fmt.Errorf("encoded length %d is not a multiple of element size %d", len(data), ElementBytes)
	}

	elements := make([]fp.Element, len(data)/ElementBytes)
	for i := range elements {
		elements[i].SetBytes(data[i*ElementBytes : (i+1)*ElementBytes])
	}
	return elements, nil
}
