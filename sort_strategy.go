package main

import (
	"sort"

	"github.com/maruel/natural"

	"qiv/internal/filelist"
)

// SortStrategy orders image entries.
type SortStrategy interface {
	// Sort returns a sorted copy; the input is left untouched.
	Sort(entries []filelist.Entry) []filelist.Entry
	Name() string
	// ID is the value stored in the config file.
	ID() int
}

func cloneEntries(entries []filelist.Entry) []filelist.Entry {
	out := make([]filelist.Entry, len(entries))
	copy(out, entries)
	return out
}

// NaturalSortStrategy orders paths so that "img2" comes before "img10".
type NaturalSortStrategy struct{}

func (s *NaturalSortStrategy) Sort(entries []filelist.Entry) []filelist.Entry {
	result := cloneEntries(entries)
	sort.SliceStable(result, func(i, j int) bool {
		return natural.Less(result[i].Path, result[j].Path)
	})
	return result
}

func (s *NaturalSortStrategy) Name() string { return "Natural" }

func (s *NaturalSortStrategy) ID() int { return SortNatural }

// SimpleSortStrategy orders paths bytewise.
type SimpleSortStrategy struct{}

func (s *SimpleSortStrategy) Sort(entries []filelist.Entry) []filelist.Entry {
	result := cloneEntries(entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

func (s *SimpleSortStrategy) Name() string { return "Simple" }

func (s *SimpleSortStrategy) ID() int { return SortSimple }

// EntryOrderSortStrategy keeps the order the entries were collected in.
// With a Rank it restores that order after another strategy was applied;
// entries without a rank go last.
type EntryOrderSortStrategy struct {
	Rank map[string]int
}

func (s *EntryOrderSortStrategy) Sort(entries []filelist.Entry) []filelist.Entry {
	result := cloneEntries(entries)
	if s.Rank == nil {
		return result
	}
	rank := func(e filelist.Entry) int {
		if r, ok := s.Rank[e.Key()]; ok {
			return r
		}
		return len(s.Rank)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return rank(result[i]) < rank(result[j])
	})
	return result
}

func (s *EntryOrderSortStrategy) Name() string { return "Entry Order" }

func (s *EntryOrderSortStrategy) ID() int { return SortEntryOrder }

// GetSortStrategy returns the strategy for a config value, natural for
// unknown values.
func GetSortStrategy(sortMethod int) SortStrategy {
	switch sortMethod {
	case SortSimple:
		return &SimpleSortStrategy{}
	case SortEntryOrder:
		return &EntryOrderSortStrategy{}
	default:
		return &NaturalSortStrategy{}
	}
}

// GetAllSortStrategies returns the strategies in cycling order.
func GetAllSortStrategies() []SortStrategy {
	return []SortStrategy{
		&NaturalSortStrategy{},
		&SimpleSortStrategy{},
		&EntryOrderSortStrategy{},
	}
}

// entryRanks records the position of every entry for EntryOrderSortStrategy.
func entryRanks(entries []filelist.Entry) map[string]int {
	rank := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, seen := rank[e.Key()]; !seen {
			rank[e.Key()] = i
		}
	}
	return rank
}
