package locale

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := NewCatalog("en-US", DefaultStrings())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return cat
}

func TestResolveCoercion(t *testing.T) {
	cat := newTestCatalog(t)

	cases := []struct {
		in   string
		want string
	}{
		{"", "en-US"},
		{"en-US", "en-US"},
		{"fr-FR", "fr-FR"},
		{"fr", "fr-FR"},
		{"fr-CA", "fr-FR"},
		{"es", "es-ES"},
		{"zz-ZZ", "en-US"},
		{"not a locale", "en-US"},
	}
	for _, c := range cases {
		if got := cat.Resolve(c.in); got != c.want {
			t.Errorf("Resolve(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTextFallback(t *testing.T) {
	cat, err := NewCatalog("en-US", map[string]map[string]string{
		"en-US": {"hello": "Hello", "only_en": "English only"},
		"fr-FR": {"hello": "Bonjour"},
	})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	if got := cat.Text("fr-FR", "hello"); got != "Bonjour" {
		t.Fatalf("Text(fr, hello) = %q", got)
	}
	if got := cat.Text("fr-FR", "only_en"); got != "English only" {
		t.Fatalf("Text(fr, only_en) = %q, want default-locale fallback", got)
	}
	if got := cat.Text("fr-FR", "missing_key"); got != "missing_key" {
		t.Fatalf("Text(fr, missing_key) = %q, want key echo", got)
	}
}

func TestNewCatalogRequiresDefaultTable(t *testing.T) {
	if _, err := NewCatalog("de-DE", DefaultStrings()); err == nil {
		t.Fatal("expected error for missing default table")
	}
	if _, err := NewCatalog("", DefaultStrings()); err == nil {
		t.Fatal("expected error for empty default")
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.yaml")

	doc := `default: en-US
locales:
  en-US:
    restart_command: restart
    welcome: Hi there
  fr-FR:
    restart_command: recommencer
    welcome: Bonjour
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if cat.Default() != "en-US" {
		t.Fatalf("Default() = %q", cat.Default())
	}
	if !cat.IsSupported("fr-FR") {
		t.Fatal("fr-FR should be supported")
	}
	if got := cat.Text("fr-FR", KeyRestartCommand); got != "recommencer" {
		t.Fatalf("Text(fr, restart_command) = %q", got)
	}
}

func TestSupportedListsDefaultFirst(t *testing.T) {
	cat := newTestCatalog(t)
	supported := cat.Supported()
	if len(supported) != 3 {
		t.Fatalf("len(Supported()) = %d, want 3", len(supported))
	}
	if supported[0] != "en-US" {
		t.Fatalf("Supported()[0] = %q, want default first", supported[0])
	}
}
