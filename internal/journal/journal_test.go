package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("journal file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer j.Close()

	for _, table := range []string{"runs", "events"} {
		var name string
		err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestAppendAndReadRun(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.BeginRun(ctx, "run-1"); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	entries := []Entry{
		{RunToken: "run-1", Seq: 1, Name: "increment", Args: "{}"},
		{RunToken: "run-1", Seq: 2, Name: "add_later", Args: `{"amount":5}`},
		{RunToken: "run-1", Seq: 3, Name: "added", Args: `{"amount":5}`},
	}
	for _, entry := range entries {
		if err := j.Append(ctx, entry); err != nil {
			t.Fatalf("Append(seq=%d) failed: %v", entry.Seq, err)
		}
	}

	got, err := j.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("ReadRun() returned %d entries, want %d", len(got), len(entries))
	}
	for i, entry := range got {
		if entry != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entry, entries[i])
		}
	}
}

func TestAppend_DuplicateSeqIsIdempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.BeginRun(ctx, "run-1"); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	first := Entry{RunToken: "run-1", Seq: 1, Name: "increment", Args: "{}"}
	if err := j.Append(ctx, first); err != nil {
		t.Fatalf("first Append() failed: %v", err)
	}

	// A retried append at the same position must neither error nor
	// overwrite.
	dup := Entry{RunToken: "run-1", Seq: 1, Name: "decrement", Args: "{}"}
	if err := j.Append(ctx, dup); err != nil {
		t.Fatalf("duplicate Append() failed: %v", err)
	}

	got, err := j.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Name != "increment" {
		t.Errorf("entry name = %q, want the first write to win", got[0].Name)
	}
}

func TestBeginRun_Idempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := j.BeginRun(ctx, "run-1"); err != nil {
			t.Fatalf("BeginRun() iteration %d failed: %v", i, err)
		}
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs, want 1", len(runs))
	}
}

func TestListRuns_CountsEvents(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.BeginRun(ctx, "run-a"); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	if err := j.BeginRun(ctx, "run-b"); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	if err := j.Append(ctx, Entry{RunToken: "run-a", Seq: 1, Name: "increment", Args: "{}"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if err := j.Append(ctx, Entry{RunToken: "run-a", Seq: 2, Name: "decrement", Args: "{}"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	runs, err := j.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Token != "run-a" || runs[0].Events != 2 {
		t.Errorf("run-a = %+v, want 2 events", runs[0])
	}
	if runs[1].Token != "run-b" || runs[1].Events != 0 {
		t.Errorf("run-b = %+v, want 0 events", runs[1])
	}
}

func TestReadRun_EmptyRun(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.ReadRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}
