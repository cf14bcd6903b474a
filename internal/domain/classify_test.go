package domain

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRejectName_Rules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRule string
	}{
		{"plain city", "Berlin", ""},
		{"multi word city", "New York", ""},
		{"accented city", "São Paulo", ""},
		{"hyphenated city", "Stratford-upon-Avon", ""},
		{"all digits", "12345", "all-digits"},
		{"punctuation only", "***", "no-letters"},
		{"digits and punctuation", "123-456", "no-letters"},
		{"placeholder test", "test", "placeholder"},
		{"placeholder mixed case", "DUMMY", "placeholder"},
		{"placeholder n/a", "N/A", "placeholder"},
		{"placeholder null", "null", "placeholder"},
		{"admin suffix region", "Kanto Region", "admin-suffix"},
		{"admin suffix province", "Buenos Aires Province", "admin-suffix"},
		{"admin suffix case insensitive", "Orange COUNTY", "admin-suffix"},
		{"more digits than letters", "A1234", "digit-heavy"},
		{"equal digits and letters ok", "Ab12", ""},
		{"bare feature word", "Ocean", "suspicious-word"},
		{"bare feature substring", "Lakeside", "suspicious-word"},
		{"bare airport", "Airport", "suspicious-word"},
		{"compound feature name kept", "Port City", ""},
		{"compound sea name kept", "Sea Point", ""},
		{"too long", longName(101), "length"},
		{"exactly 100 ok", longName(100), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRule, rejectName(tt.input))
		})
	}
}

func longName(n int) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = 'a'
	}
	return string(runes)
}

func TestCountryValid(t *testing.T) {
	tests := []struct {
		name    string
		country string
		want    bool
	}{
		{"full name", "Germany", true},
		{"two word name", "United States", true},
		{"valid alpha-2", "DE", true},
		{"another valid alpha-2", "US", true},
		{"unassigned alpha-2", "XX", false},
		{"lowercase pair is not a code", "de", true}, // plain text with letters
		{"single char", "D", false},
		{"digits", "1234", false},
		{"placeholder", "fake", false},
		{"admin suffix", "Test Region", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountryValid(tt.country))
		})
	}
}

func TestClassify_PollutionBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		pollution any
		wantOK    bool
		want      float64
	}{
		{"number in range", 51.3, true, 51.3},
		{"numeric string", "51.3", true, 51.3},
		{"zero boundary", 0.0, true, 0},
		{"upper boundary", 1000.0, true, 1000},
		{"upper boundary string", "1000", true, 1000},
		{"below zero", -0.1, false, 0},
		{"above upper", 1000.1, false, 0},
		{"non-numeric string", "heavy", false, 0},
		{"bool", true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, err := Classify(RawRecord{Name: "Berlin", Country: "Germany", Pollution: tt.pollution})
			if !tt.wantOK {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, city.Pollution)
		})
	}
}

func TestClassify_Gatekeepers(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := Classify(RawRecord{Country: "DE", Pollution: 10.0})
		var rej *RejectionError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "name", rej.Field)
	})

	t.Run("non-string name", func(t *testing.T) {
		_, err := Classify(RawRecord{Name: 12345.0, Pollution: 10.0})
		require.Error(t, err)
	})

	t.Run("missing pollution", func(t *testing.T) {
		_, err := Classify(RawRecord{Name: "Berlin", Country: "DE"})
		var rej *RejectionError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "pollution", rej.Field)
	})

	t.Run("invalid country is not a gate", func(t *testing.T) {
		city, err := Classify(RawRecord{Name: "Berlin", Country: "XX", Pollution: 10.0})
		require.NoError(t, err)
		assert.Equal(t, "XX", city.Country)
	})

	t.Run("fields are trimmed", func(t *testing.T) {
		city, err := Classify(RawRecord{Name: "  Berlin  ", Country: " Germany ", Pollution: "51.3"})
		require.NoError(t, err)
		assert.Equal(t, City{Name: "Berlin", Country: "Germany", Pollution: 51.3}, city)
	})
}

func TestFilterValid_PreservesOrder(t *testing.T) {
	raws := []RawRecord{
		{Name: "Delhi", Country: "IN", Pollution: 153.0},
		{Name: "12345", Country: "XX", Pollution: 10.0},
		{Name: "Lahore", Country: "PK", Pollution: 149.0},
		{Name: "test", Country: "US", Pollution: 5.0},
		{Name: "Dhaka", Country: "BD", Pollution: 161.0},
	}

	cities := FilterValid(raws, discardLogger())

	want := []City{
		{Name: "Delhi", Country: "IN", Pollution: 153},
		{Name: "Lahore", Country: "PK", Pollution: 149},
		{Name: "Dhaka", Country: "BD", Pollution: 161},
	}
	if diff := cmp.Diff(want, cities); diff != "" {
		t.Errorf("survivors mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterValid_EndToEndTriple(t *testing.T) {
	raws := []RawRecord{
		{Name: "Berlin", Country: "Germany", Pollution: "51.3"},
		{Name: "12345", Country: "XX", Pollution: 10.0},
		{Name: "Test", Country: "US", Pollution: 5.0},
	}

	cities := FilterValid(raws, discardLogger())

	require.Len(t, cities, 1)
	assert.Equal(t, City{Name: "Berlin", Country: "Germany", Pollution: 51.3}, cities[0])
}
