package domain

import (
	"github.com/pkg/errors"
)

var ErrUnknownVerdict = errors.New("unknown verdict")

// Verdict is the result of judging a just-placed stone. Forbidden verdicts
// only apply to the restricted color and end the game in the opponent's
// favour.
type Verdict byte

const (
	Stay = Verdict(iota)
	Win
	Overline
	DoubleFour
	DoubleThree
)

var verdictNames = [...]string{
	Stay:        "STAY",
	Win:         "WIN",
	Overline:    "OVERLINE",
	DoubleFour:  "DOUBLE_FOUR",
	DoubleThree: "DOUBLE_THREE",
}

func (v Verdict) IsForbidden() bool {
	return v == Overline || v == DoubleFour || v == DoubleThree
}

func (v Verdict) IsTerminal() bool {
	return v != Stay
}

func (v Verdict) String() string {
	if int(v) >= len(verdictNames) {
		return "UNKNOWN"
	}
	return verdictNames[v]
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	for i, name := range verdictNames {
		if name == string(text) {
			*v = Verdict(i)
			return nil
		}
	}
	return errors.WithMessagef(ErrUnknownVerdict, "%q", text)
}
