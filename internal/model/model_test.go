package model

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   Status
		wantOK bool
	}{
		{"Stationary", StatusStationary, true},
		{"stationary", StatusStationary, true},
		{"  SIEGE  ", StatusSiege, true},
		{"raid", StatusRaid, true},
		{"Embark", StatusEmbark, true},
		{"Disembark", StatusDisembark, true},
		{"Moving", StatusMoving, true},
		{"Defending", StatusDefending, true},
		{"Besieging", StatusBesieging, true},
		{"Ambushing", StatusAmbushing, true},
		{"", "", false},
		{"marching", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseStatus(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusFromIntent(t *testing.T) {
	tests := []struct {
		intent string
		want   Status
	}{
		{"Siege", StatusSiege},
		{"raid", StatusRaid},
		{"Retreat", StatusStationary},
		{"Moving", StatusStationary},
		{"", StatusStationary},
		{"anything else", StatusStationary},
	}
	for _, tt := range tests {
		if got := StatusFromIntent(tt.intent); got != tt.want {
			t.Errorf("StatusFromIntent(%q) = %v, want %v", tt.intent, got, tt.want)
		}
	}
}

func TestMovementCurrentIndex(t *testing.T) {
	m := &Movement{
		UID:        "move-1",
		Path:       []string{"A01", "B01", "C01"},
		CurrentHex: "B01",
	}
	idx, err := m.CurrentIndex()
	if err != nil {
		t.Fatalf("CurrentIndex: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}

	m.CurrentHex = "Z99"
	if _, err := m.CurrentIndex(); !errors.Is(err, ErrDataCorruption) {
		t.Errorf("expected ErrDataCorruption for off-path hex, got %v", err)
	}
}

func TestMovementReverse(t *testing.T) {
	m := &Movement{
		UID:           "move-1",
		Intent:        "Siege",
		Path:          []string{"A01", "B01", "C01", "D01"},
		TerrainValues: []float64{1, 2, 3, 4},
		CurrentHex:    "C01",
		ElapsedMilli:  750,
		Message:       "onward",
	}
	if err := m.Reverse(); err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	wantPath := []string{"C01", "B01", "A01"}
	if len(m.Path) != len(wantPath) {
		t.Fatalf("expected path %v, got %v", wantPath, m.Path)
	}
	for i := range wantPath {
		if m.Path[i] != wantPath[i] {
			t.Errorf("path[%d] = %s, want %s", i, m.Path[i], wantPath[i])
		}
	}
	wantValues := []float64{3, 2, 1}
	for i := range wantValues {
		if m.TerrainValues[i] != wantValues[i] {
			t.Errorf("terrainValues[%d] = %v, want %v", i, m.TerrainValues[i], wantValues[i])
		}
	}
	if m.Intent != IntentRetreat {
		t.Errorf("expected intent %q, got %q", IntentRetreat, m.Intent)
	}
	if m.ElapsedMilli != 0 {
		t.Errorf("expected elapsed reset, got %d", m.ElapsedMilli)
	}
	if m.Message != "" {
		t.Errorf("expected message cleared, got %q", m.Message)
	}
}

func TestMovementReverseOffPath(t *testing.T) {
	m := &Movement{
		UID:           "move-1",
		Path:          []string{"A01", "B01"},
		TerrainValues: []float64{1, 1},
		CurrentHex:    "Z99",
	}
	if err := m.Reverse(); !errors.Is(err, ErrDataCorruption) {
		t.Errorf("expected ErrDataCorruption, got %v", err)
	}
}

func TestMovementClone(t *testing.T) {
	m := &Movement{
		UID:           "move-1",
		Army:          []string{"500 spearmen"},
		Path:          []string{"A01", "B01"},
		TerrainValues: []float64{1, 2},
	}
	cp := m.Clone()
	cp.Army[0] = "changed"
	cp.Path[0] = "X01"
	cp.TerrainValues[0] = 9

	if m.Army[0] != "500 spearmen" {
		t.Error("clone shares army slice")
	}
	if m.Path[0] != "A01" {
		t.Error("clone shares path slice")
	}
	if m.TerrainValues[0] != 1 {
		t.Error("clone shares terrain values slice")
	}
}

func TestNormalizeManifest(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"plain", []string{"500 spearmen", "200 archers"}, []string{"500 spearmen", "200 archers"}},
		{"trims whitespace", []string{"  knights  "}, []string{"knights"}},
		{"drops none", []string{"None"}, nil},
		{"drops nan", []string{"nan", "NaN"}, nil},
		{"drops quoted nan", []string{"'nan'"}, nil},
		{"drops empties", []string{"", "  "}, nil},
		{"mixed", []string{"knights", "None", ""}, []string{"knights"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeManifest(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitJoinManifest(t *testing.T) {
	got := SplitManifest("['500 spearmen', '200 archers']")
	if len(got) != 2 || got[0] != "500 spearmen" || got[1] != "200 archers" {
		t.Errorf("unexpected split: %v", got)
	}

	if s := JoinManifest(nil); s != "None" {
		t.Errorf("expected None for empty manifest, got %q", s)
	}
	if s := JoinManifest([]string{"a", "b"}); s != "a, b" {
		t.Errorf("expected joined manifest, got %q", s)
	}

	if got := SplitManifest("None"); got != nil {
		t.Errorf("expected nil for None cell, got %v", got)
	}
}
