package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vybium/rescue-stark/internal/rescue-stark/logger"
	"github.com/vybium/rescue-stark/pkg/rescuestark"
)

// ConfigInput is the first JSON line on stdin
type ConfigInput struct {
	ChainLength uint64 `json:"chain_length"`
	NumQueries  int    `json:"num_queries"`
}

// WitnessInput is the second JSON line on stdin: the chain words as hex
// strings, one array of 4 per word. Null selects a random witness.
type WitnessInput [][]string

// ProofOutput is the JSON document written to stdout
type ProofOutput struct {
	Claim *rescuestark.ClaimJSON `json:"claim"`
	Proof *rescuestark.Proof     `json:"proof"`
}

func main() {
	logger.SetOutput(os.Stderr)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	// Line 1: configuration
	if !scanner.Scan() {
		fatal("Failed to read configuration")
	}
	var configInput ConfigInput
	if err := json.Unmarshal(scanner.Bytes(), &configInput); err != nil {
		fatal(fmt.Sprintf("Failed to parse configuration: %v", err))
	}

	config := rescuestark.DefaultConfig()
	if configInput.ChainLength != 0 {
		config.WithChainLength(configInput.ChainLength)
	}
	if configInput.NumQueries != 0 {
		config.WithNumQueries(configInput.NumQueries)
	}

	// Line 2: witness (optional)
	if !scanner.Scan() {
		fatal("Failed to read witness")
	}
	var witnessInput WitnessInput
	if err := json.Unmarshal(scanner.Bytes(), &witnessInput); err != nil {
		fatal(fmt.Sprintf("Failed to parse witness: %v", err))
	}

	witness, err := convertWitness(witnessInput, config.ChainLength)
	if err != nil {
		fatal(fmt.Sprintf("Failed to convert witness: %v", err))
	}

	logStderr("Creating prover...")
	prover, err := rescuestark.NewProver(config)
	if err != nil {
		fatal(fmt.Sprintf("Failed to create prover: %v", err))
	}

	logStderr(fmt.Sprintf("Generating proof for a chain of %d hashes...", config.ChainLength))
	proof, claim, err := prover.Prove(witness)
	if err != nil {
		fatal(fmt.Sprintf("Proof generation failed: %v", err))
	}
	logStderr("Proof generated successfully")

	// Self-check before emitting: replay the proof through a verifier
	verifier, err := rescuestark.NewVerifier(config)
	if err != nil {
		fatal(fmt.Sprintf("Failed to create verifier: %v", err))
	}
	ok, err := verifier.Verify(proof, claim)
	if err != nil {
		fatal(fmt.Sprintf("Proof verification errored: %v", err))
	}
	if !ok {
		fatal("Generated proof failed verification")
	}
	logStderr("Proof verified")

	output, err := json.Marshal(&ProofOutput{Claim: claim.ToJSON(), Proof: proof})
	if err != nil {
		fatal(fmt.Sprintf("Failed to serialize proof: %v", err))
	}
	os.Stdout.Write(output)
	os.Stdout.Write([]byte("\n"))
}

// convertWitness parses the hex witness words; a null witness is
// replaced by a random one of the right length
func convertWitness(input WitnessInput, chainLength uint64) (rescuestark.Witness, error) {
	if input == nil {
		logStderr("No witness supplied, sampling a random one")
		return rescuestark.NewRandomWitness(chainLength)
	}
	witness := make(rescuestark.Witness, len(input))
	for i, word := range input {
		if len(word) != len(witness[i]) {
			return nil, fmt.Errorf("witness word %d has %d elements, expected %d", i, len(word), len(witness[i]))
		}
		for j, s := range word {
			e, err := rescuestark.ElementFromHex(s)
			if err != nil {
				return nil, fmt.Errorf("witness word %d element %d: %w", i, j, err)
			}
			witness[i][j] = e
		}
	}
	return witness, nil
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "ERROR: "+msg)
	os.Exit(1)
}
