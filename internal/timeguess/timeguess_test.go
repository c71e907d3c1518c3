package timeguess

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestGuess(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   string
	}{
		{"dashed long year", "2015-07-09 23:08:08.123", "%Y-%m-%d %H:%M:%S.%f"},
		{"compact short year", "150709 23:08:08.123", "%y%m%d %H:%M:%S.%f"},
		{"compact long year", "20150709 23:08:08.123", "%Y%m%d %H:%M:%S.%f"},
		{"dashed short year", "15-07-09 23:08:08.123", "%y-%m-%d %H:%M:%S.%f"},
		{"time first", "23:08:08.123 09-07-2015", "%H:%M:%S.%f %d-%m-%Y"},
		{"microseconds", "2015-07-09 23:08:08.123456", "%Y-%m-%d %H:%M:%S.%f"},
		{"single fraction digit", "20150709 23:08:08.5", "%Y%m%d %H:%M:%S.%f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Guess(tt.sample)
			if !ok {
				t.Fatalf("Guess(%q) found no pattern", tt.sample)
			}
			if got.String() != tt.want {
				t.Errorf("Guess(%q) = %s, want %s", tt.sample, got, tt.want)
			}
		})
	}
}

func TestGuessNoMatch(t *testing.T) {
	samples := []string{
		"",
		"not a timestamp",
		"2015-07-09 23:08:08",     // fraction is required
		"2015-07-09T23:08:08.123", // RFC 3339 separator
		"2015-13-09 23:08:08.123", // month out of range
		"151309 23:08:08.123",
		"23:61:08.123 09-07-2015",
		"1436483288.123",
	}

	for _, s := range samples {
		if p, ok := Guess(s); ok {
			t.Errorf("Guess(%q) = %s, want no match", s, p)
		}
		if _, err := GuessFormat(s); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("GuessFormat(%q) error = %v, want ErrUnknownFormat", s, err)
		}
	}
}

func TestGuessPrefersEarlierPattern(t *testing.T) {
	// Every sample that parses must resolve to the first pattern able to parse it.
	samples := []string{
		"2015-07-09 23:08:08.123",
		"150709 23:08:08.123",
		"20150709 23:08:08.123",
		"15-07-09 23:08:08.123",
		"23:08:08.123 09-07-2015",
	}
	for _, s := range samples {
		got, ok := Guess(s)
		if !ok {
			t.Fatalf("Guess(%q) found no pattern", s)
		}
		for _, p := range Patterns() {
			if _, err := p.Parse(s); err == nil {
				if p != got {
					t.Errorf("Guess(%q) = %s, but earlier pattern %s also parses", s, got, p)
				}
				break
			}
		}
	}
}

func TestPatternParse(t *testing.T) {
	want := time.Date(2015, 7, 9, 23, 8, 8, 123_000_000, time.UTC)

	samples := []string{
		"2015-07-09 23:08:08.123",
		"150709 23:08:08.123",
		"20150709 23:08:08.123",
		"15-07-09 23:08:08.123",
		"23:08:08.123 09-07-2015",
	}
	for i, s := range samples {
		got, err := Patterns()[i].Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", s, err)
		}
		if !got.Equal(want) {
			t.Errorf("Parse(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestPatternParseMismatch(t *testing.T) {
	p := Patterns()[0]
	_, err := p.Parse("150709 23:08:08.123")
	if !errors.Is(err, ErrParse) {
		t.Errorf("Parse() error = %v, want ErrParse", err)
	}

	var zero Pattern
	if !zero.IsZero() {
		t.Error("zero Pattern should report IsZero")
	}
	if _, err := zero.Parse("2015-07-09 23:08:08.123"); !errors.Is(err, ErrParse) {
		t.Errorf("zero Pattern Parse() error = %v, want ErrParse", err)
	}
}

func TestPatternsIsCopy(t *testing.T) {
	list := Patterns()
	if len(list) != 5 {
		t.Fatalf("Patterns() returned %d patterns, want 5", len(list))
	}
	list[0] = Pattern{}
	if Patterns()[0].IsZero() {
		t.Error("modifying the returned slice changed the package list")
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("%y-%m-%d %H:%M:%S.%f")
	if !ok {
		t.Fatal("Lookup() did not find a known pattern")
	}
	if p.Layout() != "06-01-02 15:04:05.999999999" {
		t.Errorf("Layout() = %q", p.Layout())
	}
	if _, ok := Lookup("%Y"); ok {
		t.Error("Lookup(%Y) should not match")
	}
}

func TestPatternJSON(t *testing.T) {
	type wrapper struct {
		Pattern Pattern `json:"pattern"`
	}

	in := wrapper{Pattern: Patterns()[2]}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"pattern":"%Y%m%d %H:%M:%S.%f"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Pattern != in.Pattern {
		t.Errorf("Unmarshal() = %s, want %s", out.Pattern, in.Pattern)
	}

	if err := json.Unmarshal([]byte(`{"pattern":"%s"}`), &out); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Unmarshal(unknown) error = %v, want ErrUnknownFormat", err)
	}
}
