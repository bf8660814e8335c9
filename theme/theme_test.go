package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinPalettes(t *testing.T) {
	names := BuiltinNames()
	if len(names) < 3 {
		t.Fatalf("builtin palettes = %v", names)
	}
	for _, n := range names {
		p, err := Builtin(n)
		if err != nil {
			t.Errorf("%s: %v", n, err)
			continue
		}
		if p.Name != n {
			t.Errorf("palette %s is named %q", n, p.Name)
		}
	}
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nName: test\nColumns: 2\n#\n0 0 0\tblack\n255 255 255 white\nbad line\n"
	p, err := ParseGPL(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "test" || len(p.Colors) != 2 {
		t.Errorf("got %+v", p)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestLookupEndsAndBlend(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {255, 255, 255}}}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[1] {
		t.Error("lookup does not clamp")
	}
	mid := p.Lookup(0.5)
	if mid[0] == 0 || mid[0] == 255 || mid[0] != mid[1] || mid[1] != mid[2] {
		t.Errorf("grey midpoint = %v", mid)
	}
	if p.Index(-3) != p.Colors[0] || p.Index(9) != p.Colors[1] {
		t.Error("index does not clamp")
	}
}

func TestLoadFallsBack(t *testing.T) {
	if p := Load("no-such-palette"); p.Name != DefaultPalette {
		t.Errorf("fallback palette = %q", p.Name)
	}

	file := filepath.Join(t.TempDir(), "mine.gpl")
	os.WriteFile(file, []byte("GIMP Palette\nName: mine\n1 2 3\n"), 0644)
	if p := Load(file); p.Name != "mine" {
		t.Errorf("file palette = %q", p.Name)
	}
}

func TestThemeGradient(t *testing.T) {
	th := New(Load("gameboy"))
	g := th.Gradient(4)
	if len(g) != 4 || g[0] != th.BG() || g[3] != th.Color(1) {
		t.Errorf("gradient = %v", g)
	}
	if (RGB{255, 0, 16}).Hex() != "#ff0010" {
		t.Errorf("hex = %s", RGB{255, 0, 16}.Hex())
	}
}

func TestRoles(t *testing.T) {
	th := New(&Palette{Colors: []RGB{{0, 0, 0}, {255, 0, 0}}})
	if th.RGB(RoleBG) != (RGB{0, 0, 0}) || th.RGB(RoleSuccess) != (RGB{255, 0, 0}) {
		t.Errorf("role ends: %v %v", th.RGB(RoleBG), th.RGB(RoleSuccess))
	}
	if th.Accent() != th.Color(float64(RoleAccent)) {
		t.Error("accent differs from its palette position")
	}
	if got := th.Styles().Header.Render("x"); !strings.Contains(got, "x") {
		t.Errorf("header style = %q", got)
	}
}
