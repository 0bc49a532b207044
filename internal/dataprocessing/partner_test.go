package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ctrwatch/internal/config"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(config.DefaultPartnerAliases(), config.DefaultCanonicalPartners())
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name       string
		raw        string
		want       string
		recognized bool
	}{
		{"canonical id unchanged", "brightblox", "brightblox", true},
		{"uppercase folded", "BrightBlox", "brightblox", true},
		{"whitespace trimmed", "  toonjoy  ", "toonjoy", true},
		{"punctuation stripped", "play-pals!", "playpals", true},
		{"alias br1ghtblox", "br1ghtblox", "brightblox", true},
		{"alias plypyls", "plypyls", "playpals", true},
		{"alias plypls", "plypls", "playpals", true},
		{"alias after stripping", "Br1ght-Blox", "brightblox", true},
		{"alias m1n1mx", "m1n1mx", "minimax", true},
		{"unknown id passes through", "acmeads", "acmeads", false},
		{"unknown id still normalized", " ACME Ads ", "acmeads", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, recognized := n.Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.recognized, recognized)
		})
	}
}

// Normalizing twice must be a no-op: the output alphabet is closed under
// every normalization step.
func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{"brightblox", "BR1GHT blox", "weird@@Partner##9", "  plypls  "}
	for _, raw := range inputs {
		once, _ := n.Normalize(raw)
		twice, _ := n.Normalize(once)
		assert.Equal(t, once, twice, "normalize(%q) not idempotent", raw)
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{"UPPER", "with spaces", "sym&^%bols", "123-456", "ünïcodé"}
	for _, raw := range inputs {
		got, _ := n.Normalize(raw)
		for _, r := range got {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			assert.True(t, ok, "normalize(%q) produced %q with invalid rune %q", raw, got, r)
		}
	}
}

func TestRecognized(t *testing.T) {
	n := newTestNormalizer()
	assert.True(t, n.Recognized("kidzsy"))
	assert.False(t, n.Recognized("k1dzsy")) // alias keys are not canonical ids
	assert.False(t, n.Recognized(""))
}
