package app

import (
	"errors"
	"slices"
	"testing"

	"github.com/dkeye/relay/internal/domain"
)

func newBoard(t *testing.T) *domain.Board {
	t.Helper()
	b := domain.NewBoard(domain.DefaultColumns...)
	for _, task := range []domain.TaskID{"t1", "t2", "t3"} {
		if err := b.Place("todo", task, 0); err != nil {
			t.Fatal(err)
		}
	}
	return b
}

func TestReconcilerMoveApplies(t *testing.T) {
	b := newBoard(t)
	out, err := Reconciler{}.Move(b, domain.TaskDelta{
		TaskID: "t1", SourceColumn: "todo", DestinationColumn: "inProgress", DestinationIndex: 0,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	want := domain.TaskUpdate{TaskID: "t1", OldColumn: "todo", NewColumn: "inProgress", Index: 0, Revision: 1}
	if !out.Applied || out.Update != want {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if col, idx, _ := b.Locate("t1"); col != "inProgress" || idx != 0 {
		t.Fatalf("t1 at %s/%d", col, idx)
	}
}

func TestReconcilerMoveStaleSource(t *testing.T) {
	b := newBoard(t)
	b.Move("t1", "inProgress", 0)

	out, err := Reconciler{}.Move(b, domain.TaskDelta{
		TaskID: "t1", SourceColumn: "todo", DestinationColumn: "done", DestinationIndex: 0,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.Applied {
		t.Fatal("stale move applied")
	}
	if !errors.Is(out.Stale, domain.ErrStale) || out.Stale.Column != "inProgress" {
		t.Fatalf("unexpected stale %+v", out.Stale)
	}
	if len(out.Resync.Columns) != len(domain.DefaultColumns) {
		t.Fatalf("resync should carry the whole board, got %d columns", len(out.Resync.Columns))
	}
	if !slices.Equal(out.Resync.Columns[1].Tasks, []domain.TaskID{"t1"}) {
		t.Fatalf("resync inProgress = %v", out.Resync.Columns[1].Tasks)
	}
	if b.Revision("t1") != 1 {
		t.Fatal("rejected move changed the revision")
	}
}

func TestReconcilerMoveUnknownTask(t *testing.T) {
	b := newBoard(t)
	out, err := Reconciler{}.Move(b, domain.TaskDelta{TaskID: "ghost", SourceColumn: "todo", DestinationColumn: "done"})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.Applied || out.Stale == nil {
		t.Fatalf("unknown task must resync, got %+v", out)
	}
}

func TestReconcilerMoveUnknownColumn(t *testing.T) {
	b := newBoard(t)
	_, err := Reconciler{}.Move(b, domain.TaskDelta{TaskID: "t1", SourceColumn: "todo", DestinationColumn: "archive"})
	var merr *domain.MalformedEnvelopeError
	if !errors.As(err, &merr) || merr.Field != "destinationColumn" {
		t.Fatalf("expected malformed destinationColumn, got %v", err)
	}
	if !errors.Is(err, domain.ErrUnknownColumn) || !errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("expected ErrUnknownColumn wrapping ErrMalformed, got %v", err)
	}
}

func TestReconcilerReorder(t *testing.T) {
	b := newBoard(t)
	out, err := Reconciler{}.Reorder(b, domain.TaskDelta{TaskID: "t1", Revision: 0, DestinationIndex: 2})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if !out.Applied || out.Update.Index != 2 || out.Update.Revision != 1 || out.Update.OldColumn != "todo" || out.Update.NewColumn != "todo" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got := b.Snapshot().Columns[0].Tasks; !slices.Equal(got, []domain.TaskID{"t2", "t3", "t1"}) {
		t.Fatalf("todo = %v", got)
	}
}

func TestReconcilerReorderRejectsStaleRevisions(t *testing.T) {
	for _, rev := range []uint64{0, 1, 5} {
		b := newBoard(t)
		b.Move("t1", "todo", 1)
		b.Move("t1", "todo", 2) // revision 2
		before := b.Snapshot()

		out, err := Reconciler{}.Reorder(b, domain.TaskDelta{TaskID: "t1", Revision: rev, DestinationIndex: 0})
		if err != nil {
			t.Fatalf("reorder: %v", err)
		}
		if out.Applied {
			t.Fatalf("revision %d applied against 2", rev)
		}
		if len(out.Resync.Columns) != 1 || out.Resync.Columns[0].Name != "todo" {
			t.Fatalf("resync should carry the task's column, got %+v", out.Resync)
		}
		if out.Stale.Revision != 2 {
			t.Fatalf("stale revision = %d", out.Stale.Revision)
		}
		if !slices.Equal(b.Snapshot().Columns[0].Tasks, before.Columns[0].Tasks) {
			t.Fatal("rejected reorder changed the column")
		}
	}
}
