package model

import (
	"fmt"
	"strings"
)

// Field names one input column of a Series.
type Field uint8

const (
	FieldOpen Field = iota
	FieldHigh
	FieldLow
	FieldClose
	FieldVolume
)

var fieldNames = [...]string{"open", "high", "low", "close", "volume"}

func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return fmt.Sprintf("Field(%d)", f)
}

// ParseField accepts a column name or its first letter.
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range fieldNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// Of returns the field's value on a bar.
func (f Field) Of(b Bar) Float {
	switch f {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldVolume:
		return b.Volume
	default:
		return b.Close
	}
}
