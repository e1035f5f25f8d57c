package main

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		cmd  string
		arg  string
	}{
		{"plain message", "hello there", "hello there", ""},
		{"bare command", "/rooms", "/rooms", ""},
		{"command with arg", "/join r1", "/join", "r1"},
		{"command with padded arg", "/export  out.html ", "/export", "out.html"},
		{"empty line", "", "", ""},
		{"whitespace only", "   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, arg := parseCommand(tt.line)
			if cmd != tt.cmd || arg != tt.arg {
				t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)",
					tt.line, cmd, arg, tt.cmd, tt.arg)
			}
		})
	}
}
