package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBool is returned when a value is neither a boolean nor "true"/"false".
var ErrInvalidBool = errors.New(`must be a boolean or "true"/"false"`)

// LooseBool is a boolean that also accepts its string form. Form posts
// deliver flags as strings while JSON clients send real booleans.
type LooseBool bool

// ParseLooseBool converts "true"/"false" (any case, surrounding spaces
// ignored) to a LooseBool.
func ParseLooseBool(s string) (LooseBool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%q: %w", s, ErrInvalidBool)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *LooseBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case bool:
		*b = LooseBool(t)
		return nil
	case string:
		parsed, err := ParseLooseBool(t)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	default:
		return ErrInvalidBool
	}
}

// Bool returns the plain boolean value.
func (b LooseBool) Bool() bool {
	return bool(b)
}
