package types

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Neural Network  ", "neural network"},
		{"GPU", "gpu"},
		{"already lower", "already lower"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestConceptID(t *testing.T) {
	c := Concept{Name: "  Backpropagation  "}
	if got, want := c.ID(), "backpropagation"; got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}
}
