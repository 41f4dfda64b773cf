package domain

import "slices"

type TaskID string

// DefaultColumns is the layout a task board starts with when nothing was loaded.
var DefaultColumns = []string{"todo", "inProgress", "review", "done"}

// Board is the shared task layout of a task-board room.
// Every task sits in exactly one column. Board is not safe for concurrent
// use; the owning room serialises access.
type Board struct {
	columns   []string
	order     map[string][]TaskID
	location  map[TaskID]string
	revisions map[TaskID]uint64
}

// ColumnSnapshot is a copy of one column's ordering.
type ColumnSnapshot struct {
	Name  string   `json:"name"`
	Tasks []TaskID `json:"tasks"`
}

// BoardSnapshot is a copy of the board safe to hand to encoders.
type BoardSnapshot struct {
	Columns   []ColumnSnapshot  `json:"columns"`
	Revisions map[TaskID]uint64 `json:"revisions"`
}

func NewBoard(columns ...string) *Board {
	b := &Board{
		order:     make(map[string][]TaskID, len(columns)),
		location:  make(map[TaskID]string),
		revisions: make(map[TaskID]uint64),
	}
	for _, c := range columns {
		b.AddColumn(c)
	}
	return b
}

// AddColumn appends an empty column. Adding an existing column is a no-op.
func (b *Board) AddColumn(name string) {
	if name == "" || b.HasColumn(name) {
		return
	}
	b.columns = append(b.columns, name)
	b.order[name] = nil
}

func (b *Board) HasColumn(name string) bool {
	_, ok := b.order[name]
	return ok
}

func (b *Board) Columns() []string {
	return slices.Clone(b.columns)
}

// Place appends a task to the end of column, creating the column if needed.
// Used while loading a board; it refuses tasks that are already placed.
func (b *Board) Place(column string, task TaskID, revision uint64) error {
	if _, ok := b.location[task]; ok {
		return ErrDuplicateTask
	}
	b.AddColumn(column)
	b.order[column] = append(b.order[column], task)
	b.location[task] = column
	b.revisions[task] = revision
	return nil
}

// Locate returns the column and index currently holding task.
func (b *Board) Locate(task TaskID) (string, int, bool) {
	column, ok := b.location[task]
	if !ok {
		return "", -1, false
	}
	return column, slices.Index(b.order[column], task), true
}

func (b *Board) Revision(task TaskID) uint64 {
	return b.revisions[task]
}

// Move takes task out of its column and inserts it into column at index,
// clamped to the bounds of the destination sequence. It bumps the task's
// revision and reports the index actually used. The caller checks that
// task and column exist.
func (b *Board) Move(task TaskID, column string, index int) (int, uint64) {
	from := b.location[task]
	b.order[from] = slices.DeleteFunc(b.order[from], func(t TaskID) bool { return t == task })

	seq := b.order[column]
	index = max(0, min(index, len(seq)))
	b.order[column] = slices.Insert(seq, index, task)
	b.location[task] = column
	b.revisions[task]++
	return index, b.revisions[task]
}

func (b *Board) Len() int {
	return len(b.location)
}

func (b *Board) Snapshot() BoardSnapshot {
	return b.snapshot(b.columns)
}

// ColumnSnapshot returns only column, with the revisions of its tasks.
func (b *Board) ColumnSnapshot(column string) BoardSnapshot {
	if !b.HasColumn(column) {
		return BoardSnapshot{Columns: []ColumnSnapshot{}, Revisions: map[TaskID]uint64{}}
	}
	return b.snapshot([]string{column})
}

func (b *Board) snapshot(columns []string) BoardSnapshot {
	out := BoardSnapshot{
		Columns:   make([]ColumnSnapshot, 0, len(columns)),
		Revisions: make(map[TaskID]uint64),
	}
	for _, c := range columns {
		tasks := slices.Clone(b.order[c])
		if tasks == nil {
			tasks = []TaskID{}
		}
		out.Columns = append(out.Columns, ColumnSnapshot{Name: c, Tasks: tasks})
		for _, t := range tasks {
			out.Revisions[t] = b.revisions[t]
		}
	}
	return out
}
