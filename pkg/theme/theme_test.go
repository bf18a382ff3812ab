package theme

import (
	"slices"
	"testing"
)

func TestBuiltinThemes(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{Default, Dark} {
		th, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("built-in theme %q missing", name)
		}
		if th.NodeWidth <= 0 || th.NodeHeight <= 0 || th.FontSize <= 0 {
			t.Errorf("%s: incomplete sizes %+v", name, th)
		}
		if th.NodeFill == "" || th.EdgeColor == "" {
			t.Errorf("%s: incomplete colors %+v", name, th)
		}
	}
}

func TestRegisterFillsDefaults(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Theme{Name: "forest", NodeFill: "#e8f5e9"}); err != nil {
		t.Fatal(err)
	}

	th := r.Resolve("forest")
	if th.NodeFill != "#e8f5e9" {
		t.Errorf("NodeFill = %q, want override", th.NodeFill)
	}
	def := r.Resolve(Default)
	if th.NodeWidth != def.NodeWidth || th.EdgeColor != def.EdgeColor {
		t.Errorf("missing fields not filled: %+v", th)
	}

	if !slices.Equal(r.Names(), []string{Dark, Default, "forest"}) {
		t.Errorf("Names() = %v", r.Names())
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	if err := NewRegistry().Register(Theme{}); err == nil {
		t.Error("Register accepted an unnamed theme")
	}
}

func TestResolveUnknownFallsBack(t *testing.T) {
	r := NewRegistry()
	if got := r.Resolve("nope"); got.Name != Default {
		t.Errorf("Resolve(unknown) = %q, want %q", got.Name, Default)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	_ = a.Register(Theme{Name: Default, NodeFill: "#000000"})
	if NewRegistry().Resolve(Default).NodeFill == "#000000" {
		t.Error("Register leaked into the built-in table")
	}
}
