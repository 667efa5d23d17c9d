package table

import (
	"fmt"
	"strings"
)

// Kind is the declared type of a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// ParseKind accepts the canonical names plus a few common aliases.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "numeric", "number", "float", "int", "integer":
		return Numeric, nil
	case "categorical", "category", "string", "text":
		return Categorical, nil
	default:
		return "", fmt.Errorf("unknown column kind %q (expected numeric or categorical)", raw)
	}
}

// Valid reports whether k is one of the canonical kinds.
func (k Kind) Valid() bool { return k == Numeric || k == Categorical }

func (k Kind) String() string { return string(k) }
