package model

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Occurs is a maxOccurs cardinality: a positive count or Unbounded.
type Occurs int

// Unbounded is the maxOccurs sentinel meaning no upper limit.
const Unbounded Occurs = -1

const unboundedLiteral = "unbounded"

// ErrInvalidOccurs reports a cardinality literal that cannot be parsed.
var ErrInvalidOccurs = errors.New("model: invalid occurs value")

// ParseOccurs accepts a decimal count, "unbounded" or "*".
func ParseOccurs(raw string) (Occurs, error) {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "":
		return 0, fmt.Errorf("%w: empty", ErrInvalidOccurs)
	case unboundedLiteral, "*", "-1":
		return Unbounded, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOccurs, raw)
	}
	return Occurs(value), nil
}

// IsUnbounded reports whether o is the Unbounded sentinel.
func (o Occurs) IsUnbounded() bool {
	return o == Unbounded
}

// Many reports whether more than one occurrence is allowed.
func (o Occurs) Many() bool {
	return o == Unbounded || o > 1
}

// Valid reports whether o satisfies maxOccurs >= 1 or is Unbounded.
func (o Occurs) Valid() bool {
	return o == Unbounded || o >= 1
}

func (o Occurs) String() string {
	if o == Unbounded {
		return unboundedLiteral
	}
	return strconv.Itoa(int(o))
}

// MarshalJSON encodes Unbounded as the "unbounded" string and counts as
// numbers.
func (o Occurs) MarshalJSON() ([]byte, error) {
	if o == Unbounded {
		return []byte(`"` + unboundedLiteral + `"`), nil
	}
	return []byte(strconv.Itoa(int(o))), nil
}

// UnmarshalJSON accepts numbers and quoted literals understood by ParseOccurs.
func (o *Occurs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) >= 2 && trimmed[0] == '"' {
		unquoted, err := strconv.Unquote(string(trimmed))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidOccurs, trimmed)
		}
		trimmed = []byte(unquoted)
	}
	parsed, err := ParseOccurs(string(trimmed))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (o Occurs) MarshalYAML() (any, error) {
	if o == Unbounded {
		return unboundedLiteral, nil
	}
	return int(o), nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (o *Occurs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidOccurs, node.Line)
	}
	if node.Tag == "!!null" {
		return nil
	}
	parsed, err := ParseOccurs(node.Value)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
