package sizing

import (
	"fmt"
	"strings"
)

// Precision is the numeric format model weights are served in.
type Precision int

const (
	FP16 Precision = iota
	FP8
	INT4
)

// Precisions lists every supported precision, widest first.
var Precisions = []Precision{FP16, FP8, INT4}

// BytesPerParam is the weight storage cost of one parameter.
func (p Precision) BytesPerParam() float64 {
	switch p {
	case FP16:
		return 2
	case FP8:
		return 1
	case INT4:
		return 0.5
	}
	return 0
}

func (p Precision) String() string {
	switch p {
	case FP16:
		return "FP16"
	case FP8:
		return "FP8"
	case INT4:
		return "INT4"
	}
	return fmt.Sprintf("Precision(%d)", int(p))
}

// ParsePrecision accepts the canonical names case-insensitively, plus
// "FP4" as an alias for INT4.
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FP16", "BF16":
		return FP16, nil
	case "FP8":
		return FP8, nil
	case "INT4", "FP4":
		return INT4, nil
	}
	return 0, fmt.Errorf("unknown precision %q (want FP16, FP8 or INT4)", s)
}

func (p Precision) MarshalText() ([]byte, error) {
	switch p {
	case FP16, FP8, INT4:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("invalid precision %d", int(p))
}

func (p *Precision) UnmarshalText(b []byte) error {
	v, err := ParsePrecision(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
