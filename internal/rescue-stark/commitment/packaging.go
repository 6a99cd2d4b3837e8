package commitment

import (
	"bytes"
	"fmt"

	"github.com/vybium/rescue-stark/internal/rescue-stark/channel"
	"github.com/vybium/rescue-stark/internal/rescue-stark/crypt"
	"github.com/vybium/rescue-stark/internal/rescue-stark/logger"
)

// PackagingCommitmentSchemeProver commits to an ordered element sequence
// and answers batched opening queries
type PackagingCommitmentSchemeProver struct {
	sizeOfElement      uint64
	nElementsInSegment uint64
	nSegments          uint64
	channel            *channel.ProverChannel

	// set by Commit; immutable afterwards
	data []byte
	tree *SegmentTree
}

// NumElements returns the total number of committed elements
func (p *PackagingCommitmentSchemeProver) NumElements() uint64 {
	return p.nSegments * p.nElementsInSegment
}

// SegmentBytes returns the byte size of one segment
func (p *PackagingCommitmentSchemeProver) SegmentBytes() uint64 {
	return p.sizeOfElement * p.nElementsInSegment
}

// Commit consumes the full element data, hashes each segment, builds the
// tree and sends the root over the channel. The root is deterministic in
// the input.
func (p *PackagingCommitmentSchemeProver) Commit(data []byte) error {
	if p.tree != nil {
		return fmt.Errorf("commitment already made")
	}
	expected := p.sizeOfElement * p.nElementsInSegment * p.nSegments
	if uint64(len(data)) != expected {
		return fmt.Errorf("data length %d does not match scheme size %d", len(data), expected)
	}

	p.data = append([]byte(nil), data...)
	leaves, err := HashSegments(p.data, p.nSegments, p.SegmentBytes())
	if err != nil {
		return err
	}
	tree, err := NewSegmentTree(leaves)
	if err != nil {
		return err
	}
	p.tree = tree
	p.channel.SendDigest(tree.Root())

	log := logger.Logger()
	log.Debug().
		Uint64("n_segments", p.nSegments).
		Uint64("n_elements", p.NumElements()).
		Str("root", tree.Root().String()).
		Msg("commitment sent")
	return nil
}

// Decommit answers a batch of element-index queries: it sends the raw
// contents of every segment containing a queried element, then the
// minimal set of sibling digests needed to recompute the root. Digests
// the verifier can derive from the opened segments are never sent.
func (p *PackagingCommitmentSchemeProver) Decommit(queries []uint64) error {
	if p.tree == nil {
		return fmt.Errorf("nothing committed")
	}
	if len(queries) == 0 {
		return fmt.Errorf("empty query set")
	}
	for _, q := range queries {
		if q >= p.NumElements() {
			return fmt.Errorf("query index %d out of range [0, %d)", q, p.NumElements())
		}
	}

	segments := sortedUniqueSegments(queries, p.nElementsInSegment)
	segmentBytes := p.SegmentBytes()
	for _, s := range segments {
		p.channel.SendData(p.data[s*segmentBytes : (s+1)*segmentBytes])
	}

	nodes := DecommitmentNodes(p.nSegments, segments)
	for _, idx := range nodes {
		d, err := p.tree.Node(idx)
		if err != nil {
			return err
		}
		p.channel.SendDigest(d)
	}

	log := logger.Logger()
	log.Debug().
		Int("n_queries", len(queries)).
		Int("n_segments_opened", len(segments)).
		Int("n_sibling_digests", len(nodes)).
		Msg("decommitment sent")
	return nil
}

// PackagingCommitmentSchemeVerifier checks batched openings against a
// previously received commitment root
type PackagingCommitmentSchemeVerifier struct {
	sizeOfElement      uint64
	nElements          uint64
	nElementsInSegment uint64
	nSegments          uint64
	channel            *channel.VerifierChannel

	root     crypt.Digest
	haveRoot bool
}

// NumElements returns the total number of committed elements
func (v *PackagingCommitmentSchemeVerifier) NumElements() uint64 {
	return v.nElements
}

// ReadCommitment reads the commitment root from the channel
func (v *PackagingCommitmentSchemeVerifier) ReadCommitment() error {
	root, err := v.channel.ReceiveDigest()
	if err != nil {
		return fmt.Errorf("reading commitment: %w", err)
	}
	v.root = root
	v.haveRoot = true
	return nil
}

// Root returns the received commitment root
func (v *PackagingCommitmentSchemeVerifier) Root() (crypt.Digest, error) {
	if !v.haveRoot {
		return crypt.Digest{}, fmt.Errorf("commitment not read yet")
	}
	return v.root, nil
}

// VerifyDecommitment reads the opened segments and sibling digests for a
// batch of element-index queries from the channel, recomputes the root
// and compares it with the commitment. It returns the opened elements
// keyed by element index, and whether the recomputed root matches. A
// mismatched root yields (nil, false, nil); errors are reserved for
// malformed queries or a truncated transcript.
func (v *PackagingCommitmentSchemeVerifier) VerifyDecommitment(queries []uint64) (map[uint64][]byte, bool, error) {
	if !v.haveRoot {
		return nil, false, fmt.Errorf("commitment not read yet")
	}
	if len(queries) == 0 {
		return nil, false, fmt.Errorf("empty query set")
	}
	for _, q := range queries {
		if q >= v.nElements {
			return nil, false, fmt.Errorf("query index %d out of range [0, %d)", q, v.nElements)
		}
	}

	segments := sortedUniqueSegments(queries, v.nElementsInSegment)
	segmentBytes := v.sizeOfElement * v.nElementsInSegment

	// opened segment contents, then leaf digests
	known := make(map[uint64]crypt.Digest, 2*len(segments))
	opened := make(map[uint64][]byte, len(queries))
	for _, s := range segments {
		data, err := v.channel.ReceiveData()
		if err != nil {
			return nil, false, fmt.Errorf("reading opened segment %d: %w", s, err)
		}
		if uint64(len(data)) != segmentBytes {
			return nil, false, fmt.Errorf("opened segment %d has %d bytes, expected %d", s, len(data), segmentBytes)
		}
		known[v.nSegments+s] = crypt.HashBytesWithLength(data)
		for e := uint64(0); e < v.nElementsInSegment; e++ {
			idx := s*v.nElementsInSegment + e
			opened[idx] = data[e*v.sizeOfElement : (e+1)*v.sizeOfElement]
		}
	}

	// sibling digests, in the same canonical order the prover sent them
	for _, idx := range DecommitmentNodes(v.nSegments, segments) {
		d, err := v.channel.ReceiveDigest()
		if err != nil {
			return nil, false, fmt.Errorf("reading sibling digest for node %d: %w", idx, err)
		}
		known[idx] = d
	}

	// walk up combining children into parents
	current := make([]uint64, 0, len(segments))
	for _, s := range segments {
		current = append(current, v.nSegments+s)
	}
	for len(current) > 0 && current[0] > 1 {
		next := make([]uint64, 0, len(current))
		for i := 0; i < len(current); {
			n := current[i]
			left, right := n&^1, n|1
			l, okL := known[left]
			r, okR := known[right]
			if !okL || !okR {
				return nil, false, fmt.Errorf("missing digest for node pair (%d, %d)", left, right)
			}
			known[n/2] = crypt.HashPair(l, r)
			if i+1 < len(current) && current[i+1] == (n^1) {
				i += 2
			} else {
				i++
			}
			next = append(next, n/2)
		}
		current = next
	}

	recomputed, ok := known[1]
	if !ok {
		return nil, false, fmt.Errorf("root not reachable from opened segments")
	}
	if !bytes.Equal(recomputed[:], v.root[:]) {
		return nil, false, nil
	}
	return opened, true, nil
}
