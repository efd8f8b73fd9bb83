package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownStrategy = errors.New("unknown investment strategy")

// Strategy selects the weighting table and appreciation adjustment.
// The zero value is not a valid strategy.
type Strategy uint8

const (
	StrategyRental Strategy = iota + 1
	StrategyAppreciation
	StrategyShortTermRental
)

// Strategies lists every valid strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{StrategyRental, StrategyAppreciation, StrategyShortTermRental}
}

func (s Strategy) String() string {
	switch s {
	case StrategyRental:
		return "rental"
	case StrategyAppreciation:
		return "appreciation"
	case StrategyShortTermRental:
		return "short_term_rental"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

func (s Strategy) Valid() bool {
	switch s {
	case StrategyRental, StrategyAppreciation, StrategyShortTermRental:
		return true
	}
	return false
}

// ParseStrategy maps a tag to a Strategy. Unknown tags are rejected, never defaulted.
func ParseStrategy(tag string) (Strategy, error) {
	for _, s := range Strategies() {
		if s.String() == tag {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, tag)
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
