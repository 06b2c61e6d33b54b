package utils

import "testing"

func TestParseSource(t *testing.T) {
	tests := []struct {
		entry   string
		want    Source
		wantErr bool
	}{
		{"cloud=https://www.gstatic.com/ipranges/cloud.json", Source{"cloud", "https://www.gstatic.com/ipranges/cloud.json"}, false},
		{"  GOOG = http://example.com/goog.json ", Source{"goog", "http://example.com/goog.json"}, false},
		{"cloud=https://example.com/a?x=1", Source{"cloud", "https://example.com/a?x=1"}, false},
		{"https://example.com/a", Source{}, true},
		{"=https://example.com/a", Source{}, true},
		{"cloud=ftp://example.com/a", Source{}, true},
		{"cloud=/relative/path", Source{}, true},
		{"cloud=", Source{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.entry)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSource(%q) expected error, got %+v", tt.entry, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSource(%q) unexpected error: %v", tt.entry, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %+v, want %+v", tt.entry, got, tt.want)
		}
	}
}

func TestParseSources_RejectsDuplicates(t *testing.T) {
	_, err := ParseSources([]string{"cloud=https://a.example/x", "CLOUD=https://b.example/y"})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
	got, err := ParseSources([]string{"cloud=https://a.example/x", "goog=https://b.example/y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Name != "goog" {
		t.Errorf("unexpected sources: %+v", got)
	}
}
