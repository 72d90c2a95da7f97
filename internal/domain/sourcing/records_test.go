package sourcing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"85", 85},
		{"85%", 85},
		{" 90 % ", 90},
		{"50", 50},
		{"45%", 45},
		{"", 0},
		{"high", 0},
		{"-5", 0},
		{"250", 100},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseConfidence(tt.in))
		})
	}
}

func TestParseFlag(t *testing.T) {
	assert.Equal(t, FlagYes, ParseFlag("Yes"))
	assert.Equal(t, FlagYes, ParseFlag(" y "))
	assert.Equal(t, FlagNo, ParseFlag("NO"))
	assert.Equal(t, FlagUnknown, ParseFlag(""))
	assert.Equal(t, FlagUnknown, ParseFlag("maybe"))
}

func TestRecordKeys(t *testing.T) {
	m := ManufacturerRecord{APIName: "Aspirin", Manufacturer: "Acme", Country: "India"}
	assert.Equal(t, "aspirin|acme|india", m.Key())

	b := BuyerRecord{API: "Aspirin", Country: "India", Company: "MedCo"}
	assert.Equal(t, "aspirin|india|medco", b.Key())
}

func TestSkipSet(t *testing.T) {
	s := NewSkipSet("Aspirin|Acme|India")
	assert.True(t, s.Contains("aspirin|acme|india"))
	assert.True(t, s.Contains("ASPIRIN|ACME|INDIA"))
	assert.False(t, s.Contains("aspirin|beta|india"))

	s.Add("  Aspirin|Beta|India ")
	assert.True(t, s.Contains("aspirin|beta|india"))
}
