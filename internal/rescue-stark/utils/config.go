package utils

import "fmt"

// Config represents the configuration for hash-chain proof generation
type Config struct {
	// ChainLength is the number of Rescue hash invocations in the chain
	ChainLength uint64

	// NumQueries is the number of trace rows the verifier asks to open
	NumQueries int
}

// DefaultConfig returns a default configuration for the hash-chain prover
func DefaultConfig() *Config {
	return &Config{
		ChainLength: 3,
		NumQueries:  12,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ChainLength == 0 {
		return fmt.Errorf("chain length must be positive")
	}

	if c.NumQueries <= 0 {
		return fmt.Errorf("number of queries must be positive")
	}

	return nil
}

// WithChainLength sets the chain length
func (c *Config) WithChainLength(length uint64) *Config {
	c.ChainLength = length
	return c
}

// WithNumQueries sets the number of verifier queries
func (c *Config) WithNumQueries(queries int) *Config {
	c.NumQueries = queries
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		ChainLength: c.ChainLength,
		NumQueries:  c.NumQueries,
	}
}
