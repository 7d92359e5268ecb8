package font

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMetaRoundTrip(t *testing.T) {
	in := &Record{
		Source:              SourceSelfHosted,
		EmbedCodeSelfHosted: "@font-face{}",
		URLPath:             "/uploads/fonts/abc/",
		FontFiles:           []string{"fonts/abc/a.woff2", "fonts/abc/b.woff"},
		Naming:              NamingIndividual,
		Individual:          map[string]string{"400_normal": "X-Regular", "700_italic": "X-BoldItalic"},
	}

	out := &Record{}
	for k, v := range in.Meta() {
		if err := out.SetMeta(k, v); err != nil {
			t.Fatalf("SetMeta(%q): %v", k, err)
		}
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMetaOmitsEmpty(t *testing.T) {
	m := (&Record{FontFamilyName: "f"}).Meta()
	if diff := cmp.Diff(map[string]string{MetaFontFamilyName: "f"}, m); diff != "" {
		t.Errorf("Meta() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetMetaRejectsUnknownKeys(t *testing.T) {
	r := &Record{}
	for _, key := range []string{"fonto_color", "fonto_450_normal_individual", "400_normal_individual"} {
		if err := r.SetMeta(key, "x"); err == nil {
			t.Errorf("SetMeta(%q) succeeded", key)
		}
	}
}

func TestKindLookup(t *testing.T) {
	ks, ok := LookupKind(KindFont)
	if !ok {
		t.Fatal("font kind not registered")
	}
	if len(ks.MetaKeys) != 8+len(Variations) {
		t.Errorf("len(MetaKeys) = %d", len(ks.MetaKeys))
	}
	if !ks.Allows(IndividualMetaKey(Variations[17])) {
		t.Error("individual key not allowed")
	}
	if _, ok := LookupKind("page"); ok {
		t.Error("unexpected kind page")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Record
		wantErr bool
	}{
		{"ok", Record{Title: "A", Variations: []string{"400_normal"}}, false},
		{"blank title", Record{Title: " "}, true},
		{"bad status", Record{Title: "A", Status: "gone"}, true},
		{"bad source", Record{Title: "A", Source: "cdn"}, true},
		{"bad naming", Record{Title: "A", Naming: "mixed"}, true},
		{"bad variation", Record{Title: "A", Variations: []string{"400_oblique"}}, true},
		{"bad individual", Record{Title: "A", Individual: map[string]string{"1000_normal": "x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
