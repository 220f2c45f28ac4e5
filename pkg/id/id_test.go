package id

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Alice", "alice"},
		{"Room Driver", "roomdriver"},
		{"Lilly ?!", "lilly"},
		{"  spaced  out  ", "spacedout"},
		{"", ""},
		{"___", ""},
		{"a1b2", "a1b2"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoot(t *testing.T) {
	if got := Root("battle-gen9ou-123"); got != "battle" {
		t.Fatalf("Root = %q, want battle", got)
	}
	if got := Root("lobby"); got != "lobby" {
		t.Fatalf("Root = %q, want lobby", got)
	}
	if IsSubRoom("lobby") {
		t.Fatalf("lobby is not a sub-room")
	}
	if !IsSubRoom("battle-gen9ou-123") {
		t.Fatalf("battle-gen9ou-123 is a sub-room")
	}
}
