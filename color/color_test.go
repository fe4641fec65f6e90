package color

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#0000FF", Blue, true},
		{"#ff0000", Red, true},
		{"#FFFFFF", White, true},
		{"#12abEF", Color{0x12, 0xab, 0xef}, true},
		{" #010203 ", Color{1, 2, 3}, true},
		{"0000FF", Color{}, false},
		{"#00FF", Color{}, false},
		{"#0000FFF", Color{}, false},
		{"#GG0000", Color{}, false},
		{"", Color{}, false},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseHex(%q): unexpected error %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParseHex(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHexRoundTripsEveryChannelValue(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := Color{uint8(v), uint8(255 - v), uint8(v / 2)}
		got, err := ParseHex(c.Hex())
		if err != nil {
			t.Fatalf("ParseHex(%s): %v", c.Hex(), err)
		}
		if got != c {
			t.Fatalf("round trip %v -> %s -> %v", c, c.Hex(), got)
		}
	}
}

func TestHexIsUpperCase(t *testing.T) {
	if got := (Color{0xab, 0xcd, 0xef}).Hex(); got != "#ABCDEF" {
		t.Fatalf("Hex() = %s, want #ABCDEF", got)
	}
	if got := (Color{0xab, 0xcd, 0xef}).Digits(); got != "abcdef" {
		t.Fatalf("Digits() = %s, want abcdef", got)
	}
}

func TestScale(t *testing.T) {
	if got := White.Scale(255); got != White {
		t.Errorf("full brightness changed color: %v", got)
	}
	if got := White.Scale(0); got != Black {
		t.Errorf("zero brightness should be black, got %v", got)
	}
	// dim but lit channels stay lit
	if got := (Color{1, 0, 2}).Scale(6); got != (Color{1, 0, 1}) {
		t.Errorf("Scale(6) = %v", got)
	}
	if got := White.Scale(6); got != (Color{6, 6, 6}) {
		t.Errorf("White.Scale(6) = %v, want (6,6,6)", got)
	}
}
