package cmd

import "testing"

func TestParseGameID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"2024020500", 2024020500, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"2024020500x", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseGameID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseGameID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseGameID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
