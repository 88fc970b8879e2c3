package ident

import (
	"fmt"
	"math/rand/v2"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser     = "user"
	PrefixChart    = "chart"
	PrefixSnapshot = "snap"
	PrefixSection  = "section"
	PrefixLabel    = "label"
	PrefixOp       = "op"
	PrefixExport   = "exp"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewChartID() string    { return New(PrefixChart) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewSectionID() string  { return New(PrefixSection) }
func NewLabelID() string    { return New(PrefixLabel) }
func NewOpID() string       { return New(PrefixOp) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

const seatSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SeatID builds an id for an individually placed seat:
// "{sectionName}-{3 random uppercase alphanumerics}".
func SeatID(sectionName string) string {
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = seatSuffixAlphabet[rand.IntN(len(seatSuffixAlphabet))]
	}
	return sectionName + "-" + string(suffix)
}

// GridSeatID builds the deterministic id for a grid-filled seat:
// "{sectionName}-{rowLabel}-{number}". Reproducible for the same fill
// parameters; a fill always replaces the previous seats, so ids from two
// successive fills never coexist.
func GridSeatID(sectionName, rowLabel string, number int) string {
	return fmt.Sprintf("%s-%s-%d", sectionName, rowLabel, number)
}

// Fresh calls gen until it produces an id not present in taken, then records
// and returns it. Used when duplicating a section so every copied id is
// disjoint from everything already in the layout.
func Fresh(gen func() string, taken map[string]struct{}) string {
	for {
		id := gen()
		if _, exists := taken[id]; !exists {
			taken[id] = struct{}{}
			return id
		}
	}
}
