package invoicing

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// MaxSequence is the hard ceiling of the yearly counter. The three-digit
// zero-padded format is a contract with issued documents; past 999 the
// sequencer fails instead of silently widening the padding.
const MaxSequence = 999

var numberPattern = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d{3,})$`)

// FormatNumber renders a document number as PREFIX-YYYY-NNN.
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%03d", prefix, year, seq)
}

// ParseNumber splits a document number into prefix, year, and sequence.
func ParseNumber(s string) (prefix string, year, seq int, err error) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, 0, fmt.Errorf("%w: malformed document number %q", shared.ErrInvalidInput, s)
	}
	year, _ = strconv.Atoi(m[2])
	seq, _ = strconv.Atoi(m[3])
	return m[1], year, seq, nil
}

// NextNumber derives the next document number from the most recently
// issued one. A missing, unparseable, or prior-year last number resets
// the sequence to 1. Exceeding MaxSequence fails with
// shared.ErrSequenceExhausted.
//
// This derivation is not safe to run read-then-write against shared
// storage; the persistence gateway assigns numbers through an atomic
// per-owner-per-year counter instead.
func NextNumber(prefix string, year int, last string) (string, error) {
	seq := 1
	if last != "" {
		_, lastYear, lastSeq, err := ParseNumber(last)
		if err == nil && lastYear == year {
			seq = lastSeq + 1
		}
	}
	if seq > MaxSequence {
		return "", fmt.Errorf("%w: owner reached %d invoices in %d", shared.ErrSequenceExhausted, MaxSequence, year)
	}
	return FormatNumber(prefix, year, seq), nil
}
