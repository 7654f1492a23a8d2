package utils

import (
	"math"
	"testing"
	"time"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		def  float64
		want float64
	}{
		{"12.5", 0, 12.5},
		{" 3 ", 0, 3},
		{"", 7, 7},
		{"abc", -1, -1},
		{"1e3", 0, 1000},
		{"NaN", 2, 2},
	}
	for _, c := range cases {
		if got := ParseFloat(c.in, c.def); got != c.want {
			t.Errorf("ParseFloat(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	if got := ParseInt("42.9", 0); got != 42 {
		t.Errorf("ParseInt truncation = %d", got)
	}
	if got := ParseInt("x", 5); got != 5 {
		t.Errorf("ParseInt default = %d", got)
	}
}

func TestRoundAndClamp(t *testing.T) {
	if got := Round(1.23456, 2); got != 1.23 {
		t.Errorf("Round = %v", got)
	}
	if got := Round(math.Inf(1), 2); got != 0 {
		t.Errorf("Round(Inf) = %v", got)
	}
	if got := Clamp(120, 0, 100); got != 100 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := Clamp(math.NaN(), 0, 100); got != 0 {
		t.Errorf("Clamp NaN = %v", got)
	}
}

func TestAddressHelpers(t *testing.T) {
	addr := "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	if got := ChecksumAddress(addr); got != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Errorf("ChecksumAddress = %s", got)
	}
	if got := ChecksumAddress("not-an-address"); got != "not-an-address" {
		t.Errorf("ChecksumAddress passthrough = %s", got)
	}
	if NormalizeAddress(" 0xABC ") != "0xabc" {
		t.Errorf("NormalizeAddress failed")
	}
	if !IsEVMAddress(addr) || IsEVMAddress("0x123") {
		t.Errorf("IsEVMAddress mismatch")
	}
}

func TestHashSeedStable(t *testing.T) {
	if HashSeed("196") != HashSeed("196") {
		t.Errorf("HashSeed not stable")
	}
	if HashSeed("196") == HashSeed("1") {
		t.Errorf("HashSeed collision on trivial input")
	}
}

func TestToTime(t *testing.T) {
	if !ToTime(0).IsZero() {
		t.Errorf("ToTime(0) should be zero")
	}
	sec := int64(1_700_000_000)
	if !ToTime(sec).Equal(time.Unix(sec, 0)) {
		t.Errorf("ToTime seconds mismatch")
	}
	if !ToTime(sec * 1000).Equal(time.Unix(sec, 0)) {
		t.Errorf("ToTime millis mismatch")
	}
}
