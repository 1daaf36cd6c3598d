// Package filelist keeps the ordered list of images being browsed and the
// navigation, deletion and undelete operations on it.
package filelist

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

var (
	// ErrEmpty reports that the last entry was removed.
	ErrEmpty = errors.New("no more images")
	// ErrArchiveEntry reports an attempt to trash a file inside an archive.
	ErrArchiveEntry = errors.New("cannot delete an archive entry")
	// ErrNothingToUndelete reports an empty undo history.
	ErrNothingToUndelete = errors.New("nothing to undelete")
	// ErrJumpOutOfRange reports a "to" jump past either end of the list.
	ErrJumpOutOfRange = errors.New("jump target out of range")
	// ErrBadJump reports an unparsable jump directive.
	ErrBadJump = errors.New("invalid jump directive")
)

// DefaultHistorySize is the number of deletions that can be undone.
const DefaultHistorySize = 1024

// Entry identifies one image, either a file or an entry inside an archive.
type Entry struct {
	Path        string
	ArchivePath string
	EntryPath   string
}

// IsArchived reports whether the entry lives inside an archive.
func (e Entry) IsArchived() bool {
	return e.ArchivePath != ""
}

// String returns a display name for the entry.
func (e Entry) String() string {
	if e.IsArchived() {
		return e.ArchivePath + ":" + e.EntryPath
	}
	return e.Path
}

// Key returns a value unique per entry, suitable for cache lookups.
func (e Entry) Key() string {
	if e.IsArchived() {
		return e.ArchivePath + "\x00" + e.EntryPath
	}
	return e.Path
}

// List is the ordered image list with its current position. It is owned by
// the UI goroutine and is not safe for concurrent use.
type List struct {
	entries   []Entry
	idx       int
	lastDelta int

	// Random makes Next pick random entries.
	Random bool
	// Replace draws random entries with replacement.
	Replace bool

	rand    *Randomizer
	history *History
	trash   *Trash
}

// New returns a list positioned on the first entry.
func New(entries []Entry, historySize int) *List {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &List{
		entries:   entries,
		lastDelta: 1,
		rand:      NewRandomizer(nil),
		history:   NewHistory(historySize),
		trash:     NewTrash(),
	}
}

// SetRand replaces the randomness source.
func (l *List) SetRand(r *rand.Rand) {
	l.rand = NewRandomizer(r)
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Index returns the current position.
func (l *List) Index() int {
	return l.idx
}

// Current returns the entry at the current position.
func (l *List) Current() Entry {
	if len(l.entries) == 0 {
		return Entry{}
	}
	return l.entries[l.idx]
}

// At returns the entry at i.
func (l *List) At(i int) Entry {
	return l.entries[i]
}

// Entries returns a copy of the list.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SetIndex moves to i, reporting false when i is outside the list.
func (l *List) SetIndex(i int) bool {
	if i < 0 || i >= len(l.entries) {
		return false
	}
	l.idx = i
	return true
}

// First moves to the first entry.
func (l *List) First() { l.idx = 0 }

// Last moves to the last entry.
func (l *List) Last() {
	if len(l.entries) > 0 {
		l.idx = len(l.entries) - 1
	}
}

// Next moves by delta entries, wrapping at either end. A zero delta repeats
// the previous direction. In random mode the next index is drawn instead.
func (l *List) Next(delta int) {
	n := len(l.entries)
	if n == 0 {
		return
	}
	if delta == 0 {
		delta = l.lastDelta
	} else {
		l.lastDelta = delta
	}

	if l.Random {
		l.idx = l.rand.Index(n, l.Replace)
		return
	}
	l.idx = ((l.idx+delta)%n + n) % n
}

// Peek returns the index Next(delta) would move to in linear mode.
func (l *List) Peek(delta int) int {
	n := len(l.entries)
	if n == 0 {
		return 0
	}
	return ((l.idx+delta)%n + n) % n
}

// Shuffle permutes the whole list and returns to the first entry.
func (l *List) Shuffle() {
	l.rand.rng.Shuffle(len(l.entries), func(i, j int) {
		l.entries[i], l.entries[j] = l.entries[j], l.entries[i]
	})
	l.idx = 0
}

// Sort reorders the list in place with sortFn and returns to the first entry.
func (l *List) Sort(sortFn func([]Entry)) {
	sortFn(l.entries)
	l.idx = 0
}

func (l *List) remove(i int) {
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
}

func (l *List) insert(i int, e Entry) {
	if i < 0 {
		i = 0
	}
	if i > len(l.entries) {
		i = len(l.entries)
	}
	l.entries = append(l.entries, Entry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e
	l.idx = i
}

// Drop removes the entry at i, typically one that failed to decode. The
// position wraps to the first entry when it fell off the end.
func (l *List) Drop(i int) error {
	if i < 0 || i >= len(l.entries) {
		return fmt.Errorf("drop index %d out of range", i)
	}
	l.remove(i)
	if len(l.entries) == 0 {
		l.idx = 0
		return ErrEmpty
	}
	if i < l.idx {
		l.idx--
	}
	if l.idx >= len(l.entries) {
		l.idx = 0
	}
	return nil
}

// DeleteCurrent moves the current file into the trash and removes it from
// the list. The list is only modified once the file system step succeeded.
// ErrEmpty is returned after the final entry has gone.
func (l *List) DeleteCurrent() (Entry, error) {
	if len(l.entries) == 0 {
		return Entry{}, ErrEmpty
	}
	e := l.entries[l.idx]
	if e.IsArchived() {
		return e, ErrArchiveEntry
	}

	trashPath, err := l.trash.Move(e.Path)
	if err != nil {
		return e, err
	}

	l.history.Push(Record{Entry: e, TrashPath: trashPath, Pos: l.idx})
	l.remove(l.idx)
	if len(l.entries) == 0 {
		l.idx = 0
		return e, ErrEmpty
	}
	if l.idx == len(l.entries) {
		l.idx--
	}
	return e, nil
}

// Undelete restores the most recently trashed file to its place in the list
// and makes it current.
func (l *List) Undelete() (Entry, error) {
	rec, ok := l.history.Pop()
	if !ok {
		return Entry{}, ErrNothingToUndelete
	}
	if err := l.trash.Restore(rec.TrashPath, rec.Entry.Path); err != nil {
		return rec.Entry, err
	}
	l.insert(rec.Pos, rec.Entry)
	return rec.Entry, nil
}

var jumpWords = map[string]byte{
	"f": 'f', "forward": 'f',
	"b": 'b', "backward": 'b',
	"t": 't', "to": 't',
}

// Jump interprets directives such as "f 10", "forward 10", "b3" or "to 42".
// "to" positions are 1-based.
func (l *List) Jump(directive string) error {
	s := strings.ToLower(strings.TrimSpace(directive))
	if s == "" {
		return ErrBadJump
	}
	arg := strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyz")
	kind, ok := jumpWords[s[:len(s)-len(arg)]]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadJump, directive)
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadJump, directive)
	}

	last := len(l.entries) - 1
	switch kind {
	case 'f':
		l.idx = clamp(l.idx+n, 0, last)
	case 'b':
		l.idx = clamp(l.idx-n, 0, last)
	case 't':
		if n < 1 || n-1 > last {
			return fmt.Errorf("%w: %d of %d", ErrJumpOutOfRange, n, len(l.entries))
		}
		l.idx = n - 1
	default:
		return fmt.Errorf("%w: %q", ErrBadJump, directive)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
