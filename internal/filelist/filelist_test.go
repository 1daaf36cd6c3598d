package filelist

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func entriesOf(paths ...string) []Entry {
	out := make([]Entry, len(paths))
	for i, p := range paths {
		out[i] = Entry{Path: p}
	}
	return out
}

func pathsOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

// writeImages creates placeholder files in dir and returns their paths.
func writeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte(name), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
	return paths
}

func TestNextWraps(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"forward", 0, 1, 1},
		{"forward wrap", 2, 1, 0},
		{"backward wrap", 0, -1, 2},
		{"large delta", 1, 7, 2},
		{"large negative delta", 1, -7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(entriesOf("a", "b", "c"), 0)
			l.SetIndex(tt.start)
			l.Next(tt.delta)
			if l.Index() != tt.want {
				t.Errorf("Next(%d) from %d = %d, want %d", tt.delta, tt.start, l.Index(), tt.want)
			}
		})
	}
}

func TestNextRemembersDirection(t *testing.T) {
	l := New(entriesOf("a", "b", "c", "d"), 0)
	l.Next(0)
	if l.Index() != 1 {
		t.Errorf("initial direction should be forward, got index %d", l.Index())
	}
	l.Next(-1)
	l.Next(0)
	if l.Index() != 3 {
		t.Errorf("zero delta should repeat -1, got index %d", l.Index())
	}
}

func TestRandomWithoutReplacementVisitsAll(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		r := NewRandomizer(rand.New(rand.NewPCG(1, uint64(n))))
		for round := 0; round < 3; round++ {
			seen := make(map[int]bool)
			for i := 0; i < n; i++ {
				idx := r.Index(n, false)
				if idx < 0 || idx >= n {
					t.Fatalf("n=%d: index %d out of range", n, idx)
				}
				if seen[idx] {
					t.Fatalf("n=%d round %d: index %d repeated before all were visited", n, round, idx)
				}
				seen[idx] = true
			}
			if len(seen) != n {
				t.Errorf("n=%d: visited %d indices, want %d", n, len(seen), n)
			}
		}
	}
}

func TestRandomRebuildsOnSizeChange(t *testing.T) {
	r := NewRandomizer(rand.New(rand.NewPCG(3, 4)))
	r.Index(10, false)
	r.Index(10, false)

	seen := make(map[int]bool)
	for i := 0; i < 4; i++ {
		idx := r.Index(4, false)
		if idx >= 4 {
			t.Fatalf("index %d out of range after shrinking to 4", idx)
		}
		seen[idx] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected a fresh permutation of 4, saw %v", seen)
	}
}

func TestRandomWithReplacementInRange(t *testing.T) {
	r := NewRandomizer(rand.New(rand.NewPCG(5, 6)))
	for i := 0; i < 100; i++ {
		if idx := r.Index(3, true); idx < 0 || idx >= 3 {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestListRandomMode(t *testing.T) {
	l := New(entriesOf("a", "b", "c", "d", "e"), 0)
	l.SetRand(rand.New(rand.NewPCG(7, 8)))
	l.Random = true

	seen := make(map[int]bool)
	for i := 0; i < l.Len(); i++ {
		l.Next(1)
		seen[l.Index()] = true
	}
	if len(seen) != l.Len() {
		t.Errorf("random mode visited %d of %d entries", len(seen), l.Len())
	}
}

func TestShuffleKeepsEntries(t *testing.T) {
	l := New(entriesOf("a", "b", "c", "d", "e", "f"), 0)
	l.SetRand(rand.New(rand.NewPCG(9, 10)))
	l.SetIndex(3)
	l.Shuffle()

	if l.Index() != 0 {
		t.Errorf("Shuffle should return to the first entry, got %d", l.Index())
	}
	counts := make(map[string]int)
	for _, e := range l.Entries() {
		counts[e.Path]++
	}
	if len(counts) != 6 {
		t.Errorf("Shuffle lost or duplicated entries: %v", counts)
	}
}

func TestDeleteUndeleteExample(t *testing.T) {
	dir := t.TempDir()
	paths := writeImages(t, dir, "A.jpg", "B.jpg", "C.jpg")
	l := New(entriesOf(paths...), 0)
	l.SetIndex(1)

	trashPath, err := l.trash.PathFor(paths[1])
	if err != nil {
		t.Fatalf("PathFor failed: %v", err)
	}
	if filepath.Base(filepath.Dir(trashPath)) != TrashDir || filepath.Base(trashPath) != "B.jpg" {
		t.Fatalf("unexpected trash path %s", trashPath)
	}

	deleted, err := l.DeleteCurrent()
	if err != nil {
		t.Fatalf("DeleteCurrent failed: %v", err)
	}
	if deleted.Path != paths[1] {
		t.Errorf("deleted %s, want %s", deleted.Path, paths[1])
	}
	if !reflect.DeepEqual(pathsOf(l.Entries()), []string{paths[0], paths[2]}) {
		t.Errorf("after delete list = %v", pathsOf(l.Entries()))
	}
	if l.Index() != 1 || l.Current().Path != paths[2] {
		t.Errorf("after delete current = %d (%s), want 1 (C.jpg)", l.Index(), l.Current().Path)
	}
	if _, err := os.Stat(paths[1]); !os.IsNotExist(err) {
		t.Errorf("original B.jpg should be gone, stat err = %v", err)
	}
	if data, err := os.ReadFile(trashPath); err != nil || string(data) != "B.jpg" {
		t.Errorf("trash copy missing or wrong: %q, %v", data, err)
	}

	restored, err := l.Undelete()
	if err != nil {
		t.Fatalf("Undelete failed: %v", err)
	}
	if restored.Path != paths[1] {
		t.Errorf("restored %s, want %s", restored.Path, paths[1])
	}
	if !reflect.DeepEqual(pathsOf(l.Entries()), paths) {
		t.Errorf("after undelete list = %v, want %v", pathsOf(l.Entries()), paths)
	}
	if l.Index() != 1 {
		t.Errorf("after undelete index = %d, want 1", l.Index())
	}
	if _, err := os.Stat(paths[1]); err != nil {
		t.Errorf("B.jpg should be back: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(trashPath)); !os.IsNotExist(err) {
		t.Errorf("empty trash directory should be removed, stat err = %v", err)
	}
}

func TestDeleteUndeleteRestoresPrior(t *testing.T) {
	tests := []struct {
		name  string
		start int
	}{
		{"first", 0},
		{"middle", 2},
		{"last", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := writeImages(t, t.TempDir(), "1.png", "2.png", "3.png", "4.png", "5.png")
			l := New(entriesOf(paths...), 0)
			l.SetIndex(tt.start)
			before := pathsOf(l.Entries())

			if _, err := l.DeleteCurrent(); err != nil {
				t.Fatalf("DeleteCurrent failed: %v", err)
			}
			if tt.start == 4 && l.Index() != 3 {
				t.Errorf("deleting the last entry should select the new last, got %d", l.Index())
			}
			if _, err := l.Undelete(); err != nil {
				t.Fatalf("Undelete failed: %v", err)
			}

			if !reflect.DeepEqual(pathsOf(l.Entries()), before) {
				t.Errorf("list = %v, want %v", pathsOf(l.Entries()), before)
			}
			if l.Index() != tt.start {
				t.Errorf("index = %d, want %d", l.Index(), tt.start)
			}
		})
	}
}

func TestUndeleteOrder(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "a.gif", "b.gif", "c.gif")
	l := New(entriesOf(paths...), 0)

	l.DeleteCurrent()
	l.DeleteCurrent()

	e, err := l.Undelete()
	if err != nil || e.Path != paths[1] {
		t.Fatalf("first undelete = %s, %v; want %s", e.Path, err, paths[1])
	}
	e, err = l.Undelete()
	if err != nil || e.Path != paths[0] {
		t.Fatalf("second undelete = %s, %v; want %s", e.Path, err, paths[0])
	}
	if _, err := l.Undelete(); !errors.Is(err, ErrNothingToUndelete) {
		t.Errorf("third undelete error = %v, want ErrNothingToUndelete", err)
	}
	if !reflect.DeepEqual(pathsOf(l.Entries()), paths) {
		t.Errorf("list = %v, want %v", pathsOf(l.Entries()), paths)
	}
}

func TestDeleteLastRemaining(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "only.jpg")
	l := New(entriesOf(paths...), 0)
	if _, err := l.DeleteCurrent(); !errors.Is(err, ErrEmpty) {
		t.Errorf("deleting the only entry should report ErrEmpty, got %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("list should be empty, has %d", l.Len())
	}
}

func TestDeleteFailureLeavesList(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.jpg")
	present := writeImages(t, dir, "present.jpg")[0]
	l := New(entriesOf(present, missing), 0)
	l.SetIndex(1)

	if _, err := l.DeleteCurrent(); err == nil {
		t.Fatal("deleting a missing file should fail")
	}
	if l.Len() != 2 || l.Index() != 1 {
		t.Errorf("failed delete changed the list: len %d index %d", l.Len(), l.Index())
	}
	if _, err := l.Undelete(); !errors.Is(err, ErrNothingToUndelete) {
		t.Errorf("failed delete should not be undoable, got %v", err)
	}
}

func TestUndeleteBlockedByNewFile(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "A.jpg", "B.jpg", "C.jpg")
	l := New(entriesOf(paths...), 0)
	l.SetIndex(1)

	if _, err := l.DeleteCurrent(); err != nil {
		t.Fatalf("DeleteCurrent failed: %v", err)
	}
	trashPath, _ := l.trash.PathFor(paths[1])
	if err := os.WriteFile(paths[1], []byte("new"), 0o644); err != nil {
		t.Fatalf("Failed to recreate B.jpg: %v", err)
	}
	before := pathsOf(l.Entries())

	if _, err := l.Undelete(); err == nil {
		t.Fatal("Undelete over an existing file should fail")
	}
	if !reflect.DeepEqual(pathsOf(l.Entries()), before) || l.Index() != 1 {
		t.Errorf("failed undelete changed the list: %v index %d", pathsOf(l.Entries()), l.Index())
	}
	if data, _ := os.ReadFile(paths[1]); string(data) != "new" {
		t.Errorf("new B.jpg was overwritten: %q", data)
	}
	if _, err := os.Stat(trashPath); err != nil {
		t.Errorf("trash copy should survive a failed undelete: %v", err)
	}
	if _, err := l.Undelete(); !errors.Is(err, ErrNothingToUndelete) {
		t.Errorf("failed undelete should consume the record, got %v", err)
	}
}

func TestUndeleteKeepsEntryWhenTrashCleanupFails(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "A.jpg", "B.jpg", "C.jpg")
	l := New(entriesOf(paths...), 0)
	l.SetIndex(1)

	if _, err := l.DeleteCurrent(); err != nil {
		t.Fatalf("DeleteCurrent failed: %v", err)
	}
	trashPath, _ := l.trash.PathFor(paths[1])
	l.trash.remove = func(string) error { return os.ErrPermission }

	restored, err := l.Undelete()
	if err != nil {
		t.Fatalf("Undelete failed: %v", err)
	}
	if restored.Path != paths[1] {
		t.Errorf("restored %s, want %s", restored.Path, paths[1])
	}
	if !reflect.DeepEqual(pathsOf(l.Entries()), paths) || l.Index() != 1 {
		t.Errorf("list = %v index %d, want %v index 1", pathsOf(l.Entries()), l.Index(), paths)
	}
	if _, err := os.Stat(paths[1]); err != nil {
		t.Errorf("B.jpg should be back: %v", err)
	}
	if _, err := os.Stat(trashPath); err != nil {
		t.Errorf("trash copy should be left behind: %v", err)
	}
}

func TestDeleteArchiveEntry(t *testing.T) {
	l := New([]Entry{{Path: "book.zip/1.jpg", ArchivePath: "book.zip", EntryPath: "1.jpg"}}, 0)
	if _, err := l.DeleteCurrent(); !errors.Is(err, ErrArchiveEntry) {
		t.Errorf("expected ErrArchiveEntry, got %v", err)
	}
	if l.Len() != 1 {
		t.Error("archive entry should stay in the list")
	}
}

func TestTrashPathWithoutDirectory(t *testing.T) {
	got, err := NewTrash().PathFor("B.jpg")
	if err != nil {
		t.Fatalf("PathFor failed: %v", err)
	}
	if want := filepath.Join(".qiv-trash", "B.jpg"); got != want {
		t.Errorf("PathFor = %s, want %s", got, want)
	}
}

func TestHistoryRing(t *testing.T) {
	h := NewHistory(2)
	h.Push(Record{Pos: 1})
	h.Push(Record{Pos: 2})
	h.Push(Record{Pos: 3})

	for _, want := range []int{3, 2} {
		r, ok := h.Pop()
		if !ok || r.Pos != want {
			t.Errorf("Pop = %d, %v; want %d", r.Pos, ok, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("oldest record should have been overwritten")
	}
}

func TestJump(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		start     int
		want      int
		wantErr   error
	}{
		{"forward short", "f 3", 0, 3, nil},
		{"forward long", "forward 2", 1, 3, nil},
		{"forward no space", "F10", 0, 9, nil},
		{"forward clamps", "f 100", 5, 9, nil},
		{"backward", "b 2", 5, 3, nil},
		{"backward clamps", "backward 20", 5, 0, nil},
		{"to", "t 4", 0, 3, nil},
		{"to long", "to 10", 0, 9, nil},
		{"to zero rejected", "t 0", 2, 2, ErrJumpOutOfRange},
		{"to past end rejected", "t 11", 2, 2, ErrJumpOutOfRange},
		{"unknown kind", "x 3", 2, 2, ErrBadJump},
		{"word starting with f", "foo 1", 2, 2, ErrBadJump},
		{"word starting with b", "bar 1", 2, 2, ErrBadJump},
		{"word starting with t", "tomorrow 3", 2, 2, ErrBadJump},
		{"abbreviated word", "fwd 2", 2, 2, ErrBadJump},
		{"missing number", "f", 2, 2, ErrBadJump},
		{"empty", "", 2, 2, ErrBadJump},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(entriesOf("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), 0)
			l.SetIndex(tt.start)
			err := l.Jump(tt.directive)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Jump(%q) unexpected error: %v", tt.directive, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Jump(%q) error = %v, want %v", tt.directive, err, tt.wantErr)
			}
			if l.Index() != tt.want {
				t.Errorf("Jump(%q) from %d = %d, want %d", tt.directive, tt.start, l.Index(), tt.want)
			}
		})
	}
}

func TestDrop(t *testing.T) {
	l := New(entriesOf("a", "b", "c"), 0)
	l.SetIndex(2)
	if err := l.Drop(2); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if l.Index() != 0 {
		t.Errorf("dropping the last entry should wrap to 0, got %d", l.Index())
	}

	l.SetIndex(1)
	if err := l.Drop(0); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if l.Current().Path != "b" {
		t.Errorf("dropping an earlier entry should keep the current one, got %s", l.Current().Path)
	}

	if err := l.Drop(0); !errors.Is(err, ErrEmpty) {
		t.Errorf("dropping the final entry should report ErrEmpty, got %v", err)
	}
}
