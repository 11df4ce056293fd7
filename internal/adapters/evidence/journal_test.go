package evidence_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/raidluck/internal/adapters/evidence"
	"github.com/okian/raidluck/internal/domain/model"
)

func TestJournal_AppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "evidence.jsonl")

	j, err := evidence.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	notes := []model.EvidenceNote{
		{SubmissionID: "sub-1", Nickname: "ash", CurrentRef: "blob://a", ObservedAt: time.Now().UTC().Truncate(time.Second)},
		{SubmissionID: "sub-2", Nickname: "misty", LegacyRef: "blob://b", ObservedAt: time.Now().UTC().Truncate(time.Second)},
	}
	for _, note := range notes {
		if err := j.Append(ctx, note); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := evidence.ReadAll(path)
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if len(got) != len(notes) {
		t.Fatalf("expected %d notes, got %d", len(notes), len(got))
	}
	if got[0].SubmissionID != "sub-1" || got[0].CurrentRef != "blob://a" {
		t.Errorf("unexpected first note: %+v", got[0])
	}
	if got[1].Nickname != "misty" || got[1].LegacyRef != "blob://b" {
		t.Errorf("unexpected second note: %+v", got[1])
	}
}

func TestJournal_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "evidence.jsonl")

	j, err := evidence.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			note := model.EvidenceNote{SubmissionID: "sub", Nickname: "ash", CurrentRef: "blob://x"}
			if err := j.Append(ctx, note); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := evidence.ReadAll(path)
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if len(got) != writers {
		t.Errorf("expected %d intact lines, got %d", writers, len(got))
	}
}
