// Package rescuestark proves and verifies Rescue hash-chain computations.
//
// The statement being proven is: "I know a chain of words whose iterated
// Rescue hash equals the claimed output." The prover arithmetizes the
// chain as a 12-column execution trace (three hash invocations per
// 32-row batch), commits to the trace with a segment-hashed Merkle tree,
// and answers constraint queries drawn from a Fiat-Shamir transcript.
//
// # Quick Start
//
// Creating a prover and generating a proof:
//
//	config := rescuestark.DefaultConfig().WithChainLength(9)
//	prover, err := rescuestark.NewProver(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	witness, err := rescuestark.NewRandomWitness(config.ChainLength)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	proof, claim, err := prover.Prove(witness)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Verifying a proof against its claim:
//
//	verifier, err := rescuestark.NewVerifier(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ok, err := verifier.Verify(proof, claim)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The verifier never sees the witness; it learns only the claim and the
// transcript records inside the proof.
package rescuestark
