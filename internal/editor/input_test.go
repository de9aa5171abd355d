package editor

import "testing"

func TestShapeDateInput(t *testing.T) {
	tests := []struct {
		name    string
		current string
		input   string
		want    string
	}{
		{"empty", "", "", ""},
		{"single digit", "", "0", "0"},
		{"two digits", "0", "09", "09"},
		{"third digit inserts slash", "09", "090", "09/0"},
		{"full month day", "09/0", "09/01", "09/01"},
		{"fifth digit inserts second slash", "09/01", "09/011", "09/01/1"},
		{"complete date", "09/01/185", "09/01/1859", "09/01/1859"},
		{"non-digits stripped", "", "9a/1b", "91"},
		{"non-digits stripped past month boundary", "", "9a/1b3c", "91/3"},
		{"paste full date", "", "09/01/1859", "09/01/1859"},
		{"paste digits only", "", "09011859", "09/01/1859"},
		{"paste overlong truncates", "", "090118591234", "09/01/1859"},
		{"insert into full date rejected", "09/01/1859", "09/01/18559", "09/01/1859"},
		{"deletion from full date allowed", "09/01/1859", "09/01/185", "09/01/185"},
		{"mid-delete reflows", "09/01/1859", "0901859", "09/01/859"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShapeDateInput(tt.current, tt.input)
			if got != tt.want {
				t.Fatalf("ShapeDateInput(%q, %q) = %q, want %q", tt.current, tt.input, got, tt.want)
			}
		})
	}
}
