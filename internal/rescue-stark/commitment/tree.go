// Package commitment implements the packaging commitment scheme: an
// ordered sequence of fixed-size elements is packed into segments, each
// segment is hashed into a leaf digest, and a binary tree over the
// segment digests binds the whole sequence to a single root. Openings
// are batched: shared authentication path nodes are sent only once, and
// nodes derivable from opened data are never sent at all.
package commitment

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/rescue-stark/internal/rescue-stark/crypt"
	"github.com/vybium/rescue-stark/internal/rescue-stark/utils"
)

// SegmentTree is a binary hash tree over segment digests, stored as a
// flat heap: node 1 is the root, node i has children 2i and 2i+1, leaves
// occupy [nLeaves, 2*nLeaves). Read-only once built, safe to share
// across concurrent decommitments.
type SegmentTree struct {
	nodes   []crypt.Digest
	nLeaves uint64
}

// NewSegmentTree builds a tree over the given leaf digests. The leaf
// count must be a power of 2.
func NewSegmentTree(leaves []crypt.Digest) (*SegmentTree, error) {
	nLeaves := uint64(len(leaves))
	if !utils.IsPowerOfTwo(nLeaves) {
		return nil, fmt.Errorf("leaf count %d must be a power of 2", nLeaves)
	}

	nodes := make([]crypt.Digest, 2*nLeaves)
	copy(nodes[nLeaves:], leaves)
	for i := nLeaves - 1; i >= 1; i-- {
		nodes[i] = crypt.HashPair(nodes[2*i], nodes[2*i+1])
	}
	return &SegmentTree{nodes: nodes, nLeaves: nLeaves}, nil
}

// Root returns the tree root
func (t *SegmentTree) Root() crypt.Digest {
	return t.nodes[1]
}

// Node returns the digest at a heap index
func (t *SegmentTree) Node(index uint64) (crypt.Digest, error) {
	if index < 1 || index >= uint64(len(t.nodes)) {
		return crypt.Digest{}, fmt.Errorf("node index %d out of range [1, %d)", index, len(t.nodes))
	}
	return t.nodes[index], nil
}

// NumLeaves returns the number of leaves
func (t *SegmentTree) NumLeaves() uint64 {
	return t.nLeaves
}

// HashSegments computes the leaf digests of all segments in parallel.
// Segments are independent, so the work splits across workers.
func HashSegments(data []byte, nSegments, segmentBytes uint64) ([]crypt.Digest, error) {
	if uint64(len(data)) != nSegments*segmentBytes {
		return nil, fmt.Errorf("data length %d does not match %d segments of %d bytes", len(data), nSegments, segmentBytes)
	}

	leaves := make([]crypt.Digest, nSegments)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	chunk := (nSegments + uint64(runtime.GOMAXPROCS(0)) - 1) / uint64(runtime.GOMAXPROCS(0))
	if chunk == 0 {
		chunk = 1
	}
	for start := uint64(0); start < nSegments; start += chunk {
		start := start
		end := min(start+chunk, nSegments)
		g.Go(func() error {
			for s := start; s < end; s++ {
				leaves[s] = crypt.HashBytesWithLength(data[s*segmentBytes : (s+1)*segmentBytes])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// DecommitmentNodes returns the heap indices of the sibling digests a
// verifier needs to recompute the root from the given opened segments,
// in canonical bottom-up order. Siblings derivable from opened data are
// excluded; siblings shared by multiple queries appear once.
func DecommitmentNodes(nLeaves uint64, segments []uint64) []uint64 {
	current := make([]uint64, 0, len(segments))
	for _, s := range segments {
		current = append(current, nLeaves+s)
	}
	sort.Slice(current, func(i, j int) bool { return current[i] < current[j] })

	var needed []uint64
	for len(current) > 0 && current[0] > 1 {
		next := make([]uint64, 0, len(current))
		for i := 0; i < len(current); {
			n := current[i]
			if i+1 < len(current) && current[i+1] == (n^1) {
				// both children known, parent derivable
				i += 2
			} else {
				needed = append(needed, n^1)
				i++
			}
			next = append(next, n/2)
		}
		current = next
	}
	return needed
}

// sortedUniqueSegments maps element indices to their segment indices,
// deduplicated and sorted
func sortedUniqueSegments(queries []uint64, nElementsInSegment uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(queries))
	segments := make([]uint64, 0, len(queries))
	for _, q := range queries {
		s := q / nElementsInSegment
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			segments = append(segments, s)
		}
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i] < segments[j] })
	return segments
}
