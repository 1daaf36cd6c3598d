package main

import (
	"reflect"
	"testing"

	"qiv/internal/filelist"
)

func entriesOf(paths ...string) []filelist.Entry {
	entries := make([]filelist.Entry, len(paths))
	for i, p := range paths {
		entries[i] = filelist.Entry{Path: p}
	}
	return entries
}

func entryNames(entries []filelist.Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.String()
	}
	return names
}

// collected order of the sort fixtures
func sortFixture() []filelist.Entry {
	return entriesOf("pics/01.png", "pics/04.jpg", "pics/08.png", "pics/09.png", "pics/2.png", "pics/３.png")
}

func TestSortStrategies(t *testing.T) {
	tests := []struct {
		strategy SortStrategy
		name     string
		id       int
		want     []string
	}{
		{
			strategy: &NaturalSortStrategy{},
			name:     "Natural",
			id:       SortNatural,
			want:     []string{"pics/01.png", "pics/2.png", "pics/04.jpg", "pics/08.png", "pics/09.png", "pics/３.png"},
		},
		{
			strategy: &SimpleSortStrategy{},
			name:     "Simple",
			id:       SortSimple,
			want:     []string{"pics/01.png", "pics/04.jpg", "pics/08.png", "pics/09.png", "pics/2.png", "pics/３.png"},
		},
		{
			strategy: &EntryOrderSortStrategy{},
			name:     "Entry Order",
			id:       SortEntryOrder,
			want:     entryNames(sortFixture()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := tt.strategy.ID(); got != tt.id {
				t.Errorf("ID() = %d, want %d", got, tt.id)
			}

			input := sortFixture()
			original := sortFixture()
			got := entryNames(tt.strategy.Sort(input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sort() = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(input, original) {
				t.Error("Sort() modified its input")
			}
			if out := tt.strategy.Sort(nil); len(out) != 0 {
				t.Errorf("Sort(nil) = %v, want empty", out)
			}
		})
	}
}

func TestNaturalSortArchiveEntries(t *testing.T) {
	entries := []filelist.Entry{
		{Path: "b.zip:p10.png", ArchivePath: "b.zip", EntryPath: "p10.png"},
		{Path: "a.png"},
		{Path: "b.zip:p9.png", ArchivePath: "b.zip", EntryPath: "p9.png"},
	}
	got := entryNames((&NaturalSortStrategy{}).Sort(entries))
	want := []string{"a.png", "b.zip:p9.png", "b.zip:p10.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestEntryOrderRestoresCollection(t *testing.T) {
	collected := entriesOf("z.png", "a.png", "m.png")
	rank := entryRanks(collected)

	sorted := (&NaturalSortStrategy{}).Sort(collected)
	if got := entryNames(sorted); got[0] != "a.png" {
		t.Fatalf("natural sort = %v", got)
	}

	restored := (&EntryOrderSortStrategy{Rank: rank}).Sort(sorted)
	if got, want := entryNames(restored), entryNames(collected); !reflect.DeepEqual(got, want) {
		t.Errorf("restored = %v, want %v", got, want)
	}

	// entries added later (undelete of something never ranked) go last
	withNew := append(entriesOf("new.png"), sorted...)
	restored = (&EntryOrderSortStrategy{Rank: rank}).Sort(withNew)
	want := []string{"z.png", "a.png", "m.png", "new.png"}
	if got := entryNames(restored); !reflect.DeepEqual(got, want) {
		t.Errorf("restored with unranked = %v, want %v", got, want)
	}
}

func TestEntryRanksFirstOccurrenceWins(t *testing.T) {
	rank := entryRanks(entriesOf("a.png", "b.png", "a.png"))
	if rank["a.png"] != 0 || rank["b.png"] != 1 || len(rank) != 2 {
		t.Errorf("entryRanks = %v", rank)
	}
}

func TestGetSortStrategy(t *testing.T) {
	tests := []struct {
		sortMethod   int
		expectedID   int
		expectedName string
	}{
		{SortNatural, SortNatural, "Natural"},
		{SortSimple, SortSimple, "Simple"},
		{SortEntryOrder, SortEntryOrder, "Entry Order"},
		{999, SortNatural, "Natural"},
	}

	for _, tt := range tests {
		t.Run(tt.expectedName, func(t *testing.T) {
			strategy := GetSortStrategy(tt.sortMethod)
			if strategy.ID() != tt.expectedID {
				t.Errorf("Expected ID %d, got %d", tt.expectedID, strategy.ID())
			}
			if strategy.Name() != tt.expectedName {
				t.Errorf("Expected name '%s', got '%s'", tt.expectedName, strategy.Name())
			}
		})
	}
}

func TestGetAllSortStrategiesCycleOrder(t *testing.T) {
	strategies := GetAllSortStrategies()
	for i, s := range strategies {
		if s.ID() != i {
			t.Errorf("strategy %d has ID %d; cycling relies on position == ID", i, s.ID())
		}
	}
	if len(strategies) != 3 {
		t.Errorf("Expected 3 strategies, got %d", len(strategies))
	}
}

func TestSortStrategyEdgeCases(t *testing.T) {
	for _, strategy := range GetAllSortStrategies() {
		single := strategy.Sort(entriesOf("only.png"))
		if len(single) != 1 || single[0].Path != "only.png" {
			t.Errorf("%s: single element = %v", strategy.Name(), single)
		}

		same := strategy.Sort(entriesOf("same.png", "same.png", "same.png"))
		if len(same) != 3 {
			t.Errorf("%s changed length on identical paths", strategy.Name())
		}
	}
}
