package apt

import (
	"strings"
	"testing"
)

func TestFormatPackagesIndexOrdered(t *testing.T) {
	zeta := NewStanza(&DebControl{
		Package: "zeta",
		Version: "1.0",
		Fields:  []ControlField{{"Package", "zeta"}, {"Version", "1.0"}, {"Architecture", "amd64"}},
	}, "pool/main/zeta_1.0_amd64.deb", 10, "m", "s", "sh")
	alpha := NewStanza(&DebControl{
		Package: "alpha",
		Version: "2.0",
		Fields:  []ControlField{{"Package", "alpha"}, {"Version", "2.0"}, {"Architecture", "amd64"}},
	}, "pool/main/alpha_2.0_amd64.deb", 20, "m", "s", "sh")

	content := FormatPackagesIndex([]Stanza{zeta, alpha})
	if !strings.HasPrefix(content, "Package: alpha\n") {
		t.Errorf("stanzas not sorted by package name:\n%s", content)
	}
	if strings.Count(content, "\n\n") != 1 {
		t.Errorf("expected one blank separator between two stanzas:\n%q", content)
	}
}

func TestParsePackagesIndexRoundTrip(t *testing.T) {
	s := NewStanza(&DebControl{
		Package: "hello",
		Version: "1.0",
		Fields: []ControlField{
			{"Package", "hello"},
			{"Version", "1.0"},
			{"Architecture", "amd64"},
			{"Description", "greeting\n extended description line"},
		},
	}, "pool/main/hello_1.0_amd64.deb", 1234, "md5x", "sha1x", "sha256x")

	content := FormatPackagesIndex([]Stanza{s})
	parsed := ParsePackagesIndex(content)

	got, ok := parsed["hello_1.0_amd64.deb"]
	if !ok {
		t.Fatalf("stanza not found by pool base name, keys: %v", keys(parsed))
	}
	if got.Text != s.Text {
		t.Errorf("stanza text not preserved verbatim:\ngot  %q\nwant %q", got.Text, s.Text)
	}
	if got.Size != 1234 {
		t.Errorf("Size = %d, want 1234", got.Size)
	}
	if got.Package != "hello" || got.Version != "1.0" {
		t.Errorf("parsed fields = %q/%q", got.Package, got.Version)
	}
}

func TestParsePackagesIndexMultiple(t *testing.T) {
	a := NewStanza(&DebControl{
		Package: "a", Version: "1",
		Fields: []ControlField{{"Package", "a"}, {"Version", "1"}, {"Architecture", "all"}},
	}, "pool/main/a_1_all.deb", 1, "m", "s", "h")
	b := NewStanza(&DebControl{
		Package: "b", Version: "2",
		Fields: []ControlField{{"Package", "b"}, {"Version", "2"}, {"Architecture", "amd64"}},
	}, "pool/main/b_2_amd64.deb", 2, "m", "s", "h")

	parsed := ParsePackagesIndex(FormatPackagesIndex([]Stanza{a, b}))
	if len(parsed) != 2 {
		t.Fatalf("expected 2 stanzas, got %d", len(parsed))
	}
	if stanzaArch(parsed["a_1_all.deb"]) != "all" {
		t.Errorf("architecture of first stanza = %q", stanzaArch(parsed["a_1_all.deb"]))
	}
}

func keys(m map[string]Stanza) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
