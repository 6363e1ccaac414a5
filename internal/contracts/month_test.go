package contracts

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{"2013-03", Month{2013, 3}, false},
		{"2013-03-28", Month{2013, 3}, false},
		{"1999-12", Month{1999, 12}, false},
		{"2013-13", Month{}, true},
		{"2013-00", Month{}, true},
		{"201303", Month{}, true},
		{"abcd-03", Month{}, true},
		{"", Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonth(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonth_AddMonths(t *testing.T) {
	tests := []struct {
		from  string
		delta int
		want  string
	}{
		{"2013-03", -1, "2013-02"},
		{"2013-03", -2, "2013-01"},
		{"2013-03", -3, "2012-12"},
		{"2013-03", -12, "2012-03"},
		{"2013-03", -15, "2011-12"},
		{"2013-01", -6, "2012-07"},
		{"2013-11", 2, "2014-01"},
		{"2013-03", 0, "2013-03"},
	}

	for _, tt := range tests {
		got := MustParseMonth(tt.from).AddMonths(tt.delta).String()
		if got != tt.want {
			t.Errorf("%s%+d = %s, want %s", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestMonthsBetween(t *testing.T) {
	if d := MonthsBetween(MustParseMonth("2013-03"), MustParseMonth("2012-12")); d != 3 {
		t.Errorf("MonthsBetween = %d, want 3", d)
	}
	if d := MonthsBetween(MustParseMonth("2012-12"), MustParseMonth("2013-03")); d != -3 {
		t.Errorf("MonthsBetween = %d, want -3", d)
	}
	if !MustParseMonth("2012-12").Before(MustParseMonth("2013-01")) {
		t.Error("2012-12 should be before 2013-01")
	}
}

func TestMonthOf(t *testing.T) {
	got := MonthOf(time.Date(2013, 3, 28, 0, 0, 0, 0, time.UTC))
	if got.String() != "2013-03" {
		t.Errorf("MonthOf = %s, want 2013-03", got)
	}
}
