package indicator

import "strings"

// Check selects how much input validation a batch evaluator performs.
// Parameters are validated at every level.
type Check uint8

const (
	// CheckBasic validates shapes: non-empty, equal lengths, length > lookback.
	CheckBasic Check = iota
	// CheckOff validates parameters only. Malformed shapes panic.
	CheckOff
	// CheckStrict adds an O(n) scan that rejects NaN and Inf inputs.
	CheckStrict
)

func (c Check) String() string {
	switch c {
	case CheckOff:
		return "off"
	case CheckStrict:
		return "strict"
	default:
		return "basic"
	}
}

// ParseCheck maps "off", "basic" and "strict" to a Check level.
func ParseCheck(s string) (Check, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return CheckOff, nil
	case "", "basic":
		return CheckBasic, nil
	case "strict":
		return CheckStrict, nil
	}
	return CheckBasic, errorf(ErrInvalidParameter, "ParseCheck", "unknown level %q", s)
}
