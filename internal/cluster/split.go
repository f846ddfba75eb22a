// Package cluster partitions a term's comments into groups and lays each
// group out on a rectangular grid.
package cluster

import (
	"math/rand"
	"sort"

	"github.com/ppiankov/slangspace/internal/model"
)

// Splitter partitions comments into non-empty clusters
type Splitter interface {
	Split(comments []model.Comment) [][]model.Comment
}

// EvenSplitter sorts by time and cuts into at most Max contiguous groups
// whose sizes differ by at most one.
type EvenSplitter struct {
	Max int
}

// Split implements Splitter
func (s EvenSplitter) Split(comments []model.Comment) [][]model.Comment {
	if len(comments) == 0 {
		return nil
	}

	sorted := make([]model.Comment, len(comments))
	copy(sorted, comments)
	SortByTime(sorted)

	count := s.Max
	if count <= 0 || count > len(sorted) {
		count = len(sorted)
	}

	return chunk(sorted, evenSizes(len(sorted), count))
}

// RandomSplitter shuffles comments and draws Count group sizes within
// [Min, Max]. Infeasible bounds fall back to even sizing over Count groups.
type RandomSplitter struct {
	Count int
	Min   int
	Max   int
	Rand  *rand.Rand
}

// Split implements Splitter
func (s RandomSplitter) Split(comments []model.Comment) [][]model.Comment {
	if len(comments) == 0 {
		return nil
	}

	shuffled := make([]model.Comment, len(comments))
	copy(shuffled, comments)
	s.Rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := s.Count
	if count <= 0 {
		count = 1
	}

	sizes, ok := s.boundedSizes(len(shuffled), count)
	if !ok {
		sizes = evenSizes(len(shuffled), count)
	}

	return chunk(shuffled, sizes)
}

// boundedSizes greedily picks each size from the range that still leaves
// the remaining groups satisfiable.
func (s RandomSplitter) boundedSizes(total, count int) ([]int, bool) {
	if s.Min < 0 || s.Max < s.Min || total < count*s.Min || total > count*s.Max {
		return nil, false
	}

	sizes := make([]int, 0, count)
	remaining := total
	for i := 0; i < count; i++ {
		left := count - i - 1
		lo := max(s.Min, remaining-left*s.Max)
		hi := min(s.Max, remaining-left*s.Min)
		if lo > hi {
			return nil, false
		}

		size := lo + s.Rand.Intn(hi-lo+1)
		sizes = append(sizes, size)
		remaining -= size
	}

	return sizes, remaining == 0
}

// evenSizes splits total into count sizes, the first total%count one larger
func evenSizes(total, count int) []int {
	sizes := make([]int, count)
	base, extra := total/count, total%count
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}

// chunk cuts items into consecutive runs, dropping zero-sized runs
func chunk(items []model.Comment, sizes []int) [][]model.Comment {
	groups := make([][]model.Comment, 0, len(sizes))
	offset := 0
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		groups = append(groups, items[offset:offset+size])
		offset += size
	}
	return groups
}

// SortByTime orders comments oldest first with undated comments last.
// Ties keep their input order.
func SortByTime(comments []model.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		ti, iok := comments[i].Timestamp()
		tj, jok := comments[j].Timestamp()
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok:
			return true
		default:
			return false
		}
	})
}

// NewSplitter returns the splitter named by mode ("even" or "random")
func NewSplitter(cfg model.LayoutConfig, rng *rand.Rand) Splitter {
	if cfg.Split == "random" {
		return RandomSplitter{
			Count: cfg.RandomCount,
			Min:   cfg.RandomMin,
			Max:   cfg.RandomMax,
			Rand:  rng,
		}
	}
	return EvenSplitter{Max: cfg.MaxClusters}
}
