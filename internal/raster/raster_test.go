package raster

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/paperlens/paperlens/internal/fault"
)

// stubRenderer fabricates one page image per requested page, tagged with
// the file's first byte, after an optional per-file delay.
type stubRenderer struct {
	pageCounts map[byte]int
	delays     map[byte]time.Duration
	failDecode map[byte]bool
}

func (s *stubRenderer) Rasterize(ctx context.Context, data []byte, maxPages int) (*Result, error) {
	id := data[0]
	if d := s.delays[id]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.failDecode[id] {
		return nil, fault.New(fault.KindDecode, "not a document")
	}

	total := s.pageCounts[id]
	process, truncated := capPages(total, maxPages)
	pages := make([][]byte, 0, process)
	for p := 0; p < process; p++ {
		pages = append(pages, []byte(fmt.Sprintf("file%d-page%d", id, p+1)))
	}
	return &Result{
		Pages:          pages,
		TotalPages:     total,
		ProcessedPages: process,
		Truncated:      truncated,
	}, nil
}

func TestCapPages(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		maxPages      int
		wantProcess   int
		wantTruncated bool
	}{
		{"under the cap", 3, 10, 3, false},
		{"exactly at the cap", 10, 10, 10, false},
		{"over the cap", 25, 20, 20, true},
		{"no cap", 25, 0, 25, false},
		{"empty document", 0, 10, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			process, truncated := capPages(tt.total, tt.maxPages)
			if process != tt.wantProcess || truncated != tt.wantTruncated {
				t.Errorf("capPages(%d, %d) = (%d, %v), want (%d, %v)",
					tt.total, tt.maxPages, process, truncated, tt.wantProcess, tt.wantTruncated)
			}
		})
	}
}

func TestMerge_PreservesSelectionOrder(t *testing.T) {
	// Three files with page counts {2, 1, 3}. The first file is the
	// slowest and the last the fastest, so completion order is the
	// reverse of selection order.
	r := &stubRenderer{
		pageCounts: map[byte]int{1: 2, 2: 1, 3: 3},
		delays: map[byte]time.Duration{
			1: 30 * time.Millisecond,
			2: 15 * time.Millisecond,
			3: 0,
		},
	}

	pages, err := Merge(context.Background(), r, [][]byte{{1}, {2}, {3}}, DefaultMaxPages)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := []string{
		"file1-page1", "file1-page2",
		"file2-page1",
		"file3-page1", "file3-page2", "file3-page3",
	}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i, w := range want {
		if string(pages[i]) != w {
			t.Errorf("page %d = %q, want %q", i, pages[i], w)
		}
	}
}

func TestMerge_DecodeErrorFailsBatch(t *testing.T) {
	r := &stubRenderer{
		pageCounts: map[byte]int{1: 2, 3: 1},
		failDecode: map[byte]bool{2: true},
	}

	_, err := Merge(context.Background(), r, [][]byte{{1}, {2}, {3}}, DefaultMaxPages)
	if err == nil {
		t.Fatal("expected batch failure")
	}
	if fault.KindOf(err) != fault.KindDecode {
		t.Errorf("error kind = %v, want decode", fault.KindOf(err))
	}
}

func TestMerge_ContextCancellation(t *testing.T) {
	r := &stubRenderer{
		pageCounts: map[byte]int{1: 1},
		delays:     map[byte]time.Duration{1: time.Second},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Merge(ctx, r, [][]byte{{1}}, DefaultMaxPages)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMuPDF_DecodeError(t *testing.T) {
	_, err := NewMuPDF().Rasterize(context.Background(), []byte("definitely not a pdf"), DefaultMaxPages)
	if err == nil {
		t.Fatal("expected decode error for garbage input")
	}
	if fault.KindOf(err) != fault.KindDecode {
		t.Errorf("error kind = %v, want decode", fault.KindOf(err))
	}
}
