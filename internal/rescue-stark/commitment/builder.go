package commitment

import (
	"fmt"

	"github.com/vybium/rescue-stark/internal/rescue-stark/channel"
	"github.com/vybium/rescue-stark/internal/rescue-stark/crypt"
	"github.com/vybium/rescue-stark/internal/rescue-stark/utils"
)

// MakeCommitmentSchemeProver creates a packaging commitment scheme
// prover. nSegments must be a power of 2; the committed data size is
// sizeOfElement * nElementsInSegment * nSegments bytes.
func MakeCommitmentSchemeProver(
	sizeOfElement, nElementsInSegment, nSegments uint64,
	ch *channel.ProverChannel,
) (*PackagingCommitmentSchemeProver, error) {
	if sizeOfElement == 0 || nElementsInSegment == 0 {
		return nil, fmt.Errorf("element and segment sizes must be positive")
	}
	if !utils.IsPowerOfTwo(nSegments) {
		return nil, fmt.Errorf("segment count %d must be a power of 2", nSegments)
	}
	if ch == nil {
		return nil, fmt.Errorf("prover channel is nil")
	}

	return &PackagingCommitmentSchemeProver{
		sizeOfElement:      sizeOfElement,
		nElementsInSegment: nElementsInSegment,
		nSegments:          nSegments,
		channel:            ch,
	}, nil
}

// NewCommitmentSchemeVerifier creates a packaging commitment scheme
// verifier for an explicit segment split. The triple must match the one
// the prover committed with; nSegments must be a power of 2.
func NewCommitmentSchemeVerifier(
	sizeOfElement, nElementsInSegment, nSegments uint64,
	ch *channel.VerifierChannel,
) (*PackagingCommitmentSchemeVerifier, error) {
	if sizeOfElement == 0 || nElementsInSegment == 0 {
		return nil, fmt.Errorf("element and segment sizes must be positive")
	}
	if !utils.IsPowerOfTwo(nSegments) {
		return nil, fmt.Errorf("segment count %d must be a power of 2", nSegments)
	}
	if ch == nil {
		return nil, fmt.Errorf("verifier channel is nil")
	}

	return &PackagingCommitmentSchemeVerifier{
		sizeOfElement:      sizeOfElement,
		nElements:          nSegments * nElementsInSegment,
		nElementsInSegment: nElementsInSegment,
		nSegments:          nSegments,
		channel:            ch,
	}, nil
}

// MakeCommitmentSchemeVerifier creates a packaging commitment scheme
// verifier for nElements committed elements. The segment split is
// derived with SuggestSegmentSplit, the same policy a prover-side caller
// uses, so both sides agree on the tree shape.
func MakeCommitmentSchemeVerifier(
	sizeOfElement, nElements uint64,
	ch *channel.VerifierChannel,
) (*PackagingCommitmentSchemeVerifier, error) {
	if sizeOfElement == 0 {
		return nil, fmt.Errorf("element size must be positive")
	}
	if !utils.IsPowerOfTwo(nElements) {
		return nil, fmt.Errorf("element count %d must be a power of 2", nElements)
	}

	nSegments, nElementsInSegment := SuggestSegmentSplit(nElements, sizeOfElement)
	return NewCommitmentSchemeVerifier(sizeOfElement, nElementsInSegment, nSegments, ch)
}

// SuggestSegmentSplit picks (nSegments, nElementsInSegment) for a
// committed sequence: segments are sized to hold at least two digests
// worth of data, so hashing a segment is never more expensive on the
// wire than sending its elements' digests. nElements must be a power
// of 2.
func SuggestSegmentSplit(nElements, sizeOfElement uint64) (nSegments, nElementsInSegment uint64) {
	minElements := utils.DivCeil(2*crypt.DigestNumBytes, sizeOfElement)
	nElementsInSegment = utils.NextPowerOfTwo(minElements)
	if nElementsInSegment > nElements {
		nElementsInSegment = nElements
	}
	nSegments = nElements / nElementsInSegment
	return nSegments, nElementsInSegment
}
