package hexmap

import "testing"

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		letters string
		want    int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AB", 27},
		{"AZ", 51},
		{"BA", 52},
		{"ZZ", 701},
		{"AAA", 702},
		{"a", 0},
		{"ab", 27},
	}
	for _, tt := range tests {
		if got := ColumnToIndex(tt.letters); got != tt.want {
			t.Errorf("ColumnToIndex(%q) = %d, want %d", tt.letters, got, tt.want)
		}
	}
}

func TestIndexToColumn_RoundTrip(t *testing.T) {
	// Round trip the whole practical column range.
	for i := 0; i < 2000; i++ {
		letters := IndexToColumn(i)
		if got := ColumnToIndex(letters); got != i {
			t.Fatalf("ColumnToIndex(IndexToColumn(%d)) = %d via %q", i, got, letters)
		}
	}
}

func TestSplitHexID(t *testing.T) {
	tests := []struct {
		id      string
		letters string
		digits  string
		wantErr bool
	}{
		{"A01", "A", "01", false},
		{"AB12", "AB", "12", false},
		{"z9", "z", "9", false},
		{"ZZ100", "ZZ", "100", false},
		{"", "", "", true},
		{"12", "", "", true},
		{"AB", "", "", true},
		{"A1B", "", "", true},
		{"A-1", "", "", true},
		{"A 1", "", "", true},
	}
	for _, tt := range tests {
		letters, digits, err := SplitHexID(tt.id)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SplitHexID(%q) expected error", tt.id)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitHexID(%q) unexpected error: %v", tt.id, err)
			continue
		}
		if letters != tt.letters || digits != tt.digits {
			t.Errorf("SplitHexID(%q) = (%q, %q), want (%q, %q)",
				tt.id, letters, digits, tt.letters, tt.digits)
		}
	}
}

func TestToCoordinates(t *testing.T) {
	tests := []struct {
		id   string
		col  int
		row  int
	}{
		{"A01", 0, 1},
		{"B10", 1, 10},
		{"AA05", 26, 5},
		{"Z99", 25, 99},
	}
	for _, tt := range tests {
		col, row, err := ToCoordinates(tt.id)
		if err != nil {
			t.Errorf("ToCoordinates(%q) unexpected error: %v", tt.id, err)
			continue
		}
		if col != tt.col || row != tt.row {
			t.Errorf("ToCoordinates(%q) = (%d, %d), want (%d, %d)",
				tt.id, col, row, tt.col, tt.row)
		}
	}
}

func TestFormatHexID(t *testing.T) {
	tests := []struct {
		col  int
		row  int
		want string
	}{
		{0, 1, "A01"},
		{1, 10, "B10"},
		{26, 5, "AA05"},
		{25, 100, "Z100"},
	}
	for _, tt := range tests {
		if got := FormatHexID(tt.col, tt.row); got != tt.want {
			t.Errorf("FormatHexID(%d, %d) = %q, want %q", tt.col, tt.row, got, tt.want)
		}
	}
}
