package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad_JSONL(t *testing.T) {
	path := writeJSONL(t, `{"id":"p1","title":"First Paper","abstract":"We study widgets."}

{"id":"p2","title":"Second Paper","abstract":"We study gadgets."}
`)

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (blank lines skipped)", len(records))
	}
	if records[0].ID != "p1" || records[0].Title != "First Paper" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].Abstract != "We study gadgets." {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestLoadSample_Limit(t *testing.T) {
	path := writeJSONL(t, `{"id":"p1","title":"A","abstract":"a"}
{"id":"p2","title":"B","abstract":"b"}
{"id":"p3","title":"C","abstract":"c"}
`)

	records, err := NewLoader(path).LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestLoad_MalformedLine(t *testing.T) {
	path := writeJSONL(t, `{"id":"p1","title":"A","abstract":"a"}
not json
`)
	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("expected error for malformed JSONL line")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.csv")
	if err := os.WriteFile(path, []byte("id,title\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
