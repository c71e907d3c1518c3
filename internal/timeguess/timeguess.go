package timeguess

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrUnknownFormat is returned when no known pattern matches a timestamp.
	ErrUnknownFormat = errors.New("unrecognized timestamp format")

	// ErrParse is returned when a timestamp cannot be parsed with a given pattern.
	ErrParse = errors.New("timestamp does not match pattern")
)

// Pattern describes one supported timestamp layout.
// The zero value matches nothing.
type Pattern struct {
	name   string         // strftime form, e.g. %Y-%m-%d %H:%M:%S.%f
	layout string         // Go reference layout
	shape  *regexp.Regexp // digit layout, requires the fractional seconds
}

// Fractional seconds take one or more digits after the seconds field.
// The .999999999 layout accepts any count, the shape makes it mandatory.
var patterns = []Pattern{
	{
		name:   "%Y-%m-%d %H:%M:%S.%f",
		layout: "2006-01-02 15:04:05.999999999",
		shape:  regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d+$`),
	},
	{
		name:   "%y%m%d %H:%M:%S.%f",
		layout: "060102 15:04:05.999999999",
		shape:  regexp.MustCompile(`^\d{6} \d{2}:\d{2}:\d{2}\.\d+$`),
	},
	{
		name:   "%Y%m%d %H:%M:%S.%f",
		layout: "20060102 15:04:05.999999999",
		shape:  regexp.MustCompile(`^\d{8} \d{2}:\d{2}:\d{2}\.\d+$`),
	},
	{
		name:   "%y-%m-%d %H:%M:%S.%f",
		layout: "06-01-02 15:04:05.999999999",
		shape:  regexp.MustCompile(`^\d{2}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d+$`),
	},
	{
		name:   "%H:%M:%S.%f %d-%m-%Y",
		layout: "15:04:05.999999999 02-01-2006",
		shape:  regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d+ \d{2}-\d{2}-\d{4}$`),
	},
}

// Patterns returns the supported patterns in the order Guess tries them.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// Lookup returns the known pattern with the given strftime name.
func Lookup(name string) (Pattern, bool) {
	for _, p := range patterns {
		if p.name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

// Guess returns the first pattern, in list order, that parses sample.
// Earlier patterns win when a sample is valid under more than one.
func Guess(sample string) (Pattern, bool) {
	for _, p := range patterns {
		if _, err := p.Parse(sample); err == nil {
			return p, true
		}
	}
	return Pattern{}, false
}

// GuessFormat is Guess with an error for the no-match case.
func GuessFormat(sample string) (Pattern, error) {
	p, ok := Guess(sample)
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrUnknownFormat, sample)
	}
	return p, nil
}

// Parse applies the pattern to s. The result is in UTC.
func (p Pattern) Parse(s string) (time.Time, error) {
	if p.shape == nil {
		return time.Time{}, fmt.Errorf("%w: no pattern selected", ErrParse)
	}
	if !p.shape.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q is not %s", ErrParse, s, p.name)
	}
	t, err := time.Parse(p.layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q as %s: %w", ErrParse, s, p.name, err)
	}
	return t, nil
}

// String returns the strftime form of the pattern.
func (p Pattern) String() string {
	return p.name
}

// IsZero reports whether p is the empty pattern.
func (p Pattern) IsZero() bool {
	return p.shape == nil
}

// Layout returns the Go reference layout used to parse the pattern.
func (p Pattern) Layout() string {
	return p.layout
}

func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.name), nil
}

func (p *Pattern) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = Pattern{}
		return nil
	}
	found, ok := Lookup(string(b))
	if !ok {
		return fmt.Errorf("%w: unknown pattern %q", ErrUnknownFormat, string(b))
	}
	*p = found
	return nil
}
