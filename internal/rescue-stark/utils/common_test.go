package utils

import "testing"

// TestIsPowerOfTwo tests power-of-two detection
func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        uint64
		expected bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{4, true},
		{6, false},
		{1 << 20, true},
		{(1 << 20) + 1, false},
		{1 << 63, true},
	}

	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.expected {
			t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, got, tt.expected)
		}
	}
}

// TestLog2 tests exact base-2 logarithm of powers of two
func TestLog2(t *testing.T) {
	for k := 0; k < 64; k++ {
		n := uint64(1) << k
		if got := Log2(n); got != k {
			t.Errorf("Log2(%d) = %d, expected %d", n, got, k)
		}
	}
}

// TestLog2Ceil tests the rounded-up base-2 logarithm
func TestLog2Ceil(t *testing.T) {
	tests := []struct {
		n        uint64
		expected int
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
	}

	for _, tt := range tests {
		if got := Log2Ceil(tt.n); got != tt.expected {
			t.Errorf("Log2Ceil(%d) = %d, expected %d", tt.n, got, tt.expected)
		}
	}
}

// TestNextPowerOfTwo tests rounding up to a power of two
func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        uint64
		expected uint64
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{17, 32},
		{96, 128},
		{1 << 30, 1 << 30},
	}

	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.n); got != tt.expected {
			t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.n, got, tt.expected)
		}
	}
}

// TestSafeDiv tests division that requires exact divisibility
func TestSafeDiv(t *testing.T) {
	if got, err := SafeDiv(12, 4); err != nil || got != 3 {
		t.Errorf("SafeDiv(12, 4) = (%d, %v), expected (3, nil)", got, err)
	}

	if _, err := SafeDiv(13, 4); err == nil {
		t.Error("Expected error for non-exact division")
	}

	if _, err := SafeDiv(12, 0); err == nil {
		t.Error("Expected error for division by zero")
	}
}

// TestDivCeil tests rounded-up division
func TestDivCeil(t *testing.T) {
	tests := []struct {
		a, b     uint64
		expected uint64
	}{
		{0, 4, 0},
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{40, 20, 2},
		{41, 20, 3},
	}

	for _, tt := range tests {
		if got := DivCeil(tt.a, tt.b); got != tt.expected {
			t.Errorf("DivCeil(%d, %d) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
