package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		valid   bool
		canon   string
		popular bool
	}{
		{name: "lowercase popular", raw: "aapl", valid: true, canon: "AAPL", popular: true},
		{name: "padded", raw: "  msft ", valid: true, canon: "MSFT", popular: true},
		{name: "single letter", raw: "F", valid: true, canon: "F", popular: false},
		{name: "five letters", raw: "GOOGL", valid: true, canon: "GOOGL", popular: true},
		{name: "too long", raw: "TOOLONG1", valid: false, canon: "TOOLONG1"},
		{name: "digits", raw: "123", valid: false, canon: "123"},
		{name: "empty", raw: "", valid: false, canon: ""},
		{name: "mixed alphanumeric", raw: "BRK5", valid: false, canon: "BRK5"},
		{name: "dot class share", raw: "BRK.B", valid: false, canon: "BRK.B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.canon, got.Canonical)
			assert.Equal(t, tt.popular, got.KnownPopular)
		})
	}
}
