package journal

import (
	"context"
	"sort"
)

// Deduplicate removes duplicate rows in one bulk delete and returns how many
// were removed. Running it again right after always removes nothing.
//
// Rows sharing an id keep the one with the latest UpdatedAt when they were all
// created at the same instant, and the earliest created one otherwise. Of the
// rows left, those sharing a CreatedAt keep the smallest id.
func (s *Service) Deduplicate(ctx context.Context) (int, error) {
	entries, err := s.store.FindAll(ctx)
	if err != nil {
		return 0, storageError(err)
	}

	doomed := planDedup(entries)
	if len(doomed) == 0 {
		return 0, nil
	}

	removed, err := s.store.BulkDelete(ctx, deletableIDs(entries, doomed))
	if err != nil {
		return 0, storageError(err)
	}

	s.log.Warn().Int64("removed", removed).Msg("duplicate entries removed")
	return int(removed), nil
}

// planDedup returns the indexes into entries of the rows to delete, in
// ascending order.
func planDedup(entries []Entry) []int {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return entries[order[a]].ID < entries[order[b]].ID
	})

	marked := make(map[int]bool)

	// same id
	for _, group := range groupBy(order, func(i int) int64 { return entries[i].ID }) {
		if len(group) < 2 {
			continue
		}
		keep := group[0]
		if sameCreatedAt(entries, group) {
			for _, i := range group[1:] {
				if entries[i].UpdatedAt.After(entries[keep].UpdatedAt) {
					keep = i
				}
			}
		} else {
			for _, i := range group[1:] {
				if entries[i].CreatedAt.Before(entries[keep].CreatedAt) {
					keep = i
				}
			}
		}
		for _, i := range group {
			if i != keep {
				marked[i] = true
			}
		}
	}

	// same created_at among the survivors, smallest id wins
	remaining := make([]int, 0, len(order))
	for _, i := range order {
		if !marked[i] {
			remaining = append(remaining, i)
		}
	}
	for _, group := range groupBy(remaining, func(i int) int64 { return entries[i].CreatedAt.UnixNano() }) {
		for _, i := range group[1:] {
			marked[i] = true
		}
	}

	doomed := make([]int, 0, len(marked))
	for i := range marked {
		doomed = append(doomed, i)
	}
	sort.Ints(doomed)
	return doomed
}

// groupBy partitions idx by key, keeping the relative order of idx inside
// each group and ordering groups by first appearance.
func groupBy(idx []int, key func(int) int64) [][]int {
	pos := make(map[int64]int)
	var groups [][]int
	for _, i := range idx {
		k := key(i)
		g, ok := pos[k]
		if !ok {
			g = len(groups)
			pos[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func sameCreatedAt(entries []Entry, group []int) bool {
	first := entries[group[0]].CreatedAt
	for _, i := range group[1:] {
		if !entries[i].CreatedAt.Equal(first) {
			return false
		}
	}
	return true
}

// deletableIDs maps doomed rows to ids, leaving out any id a kept row still
// uses since deleting by id would take the kept row with it.
func deletableIDs(entries []Entry, doomed []int) []int64 {
	isDoomed := make(map[int]bool, len(doomed))
	for _, i := range doomed {
		isDoomed[i] = true
	}
	kept := make(map[int64]bool)
	for i, e := range entries {
		if !isDoomed[i] {
			kept[e.ID] = true
		}
	}

	seen := make(map[int64]bool)
	ids := make([]int64, 0, len(doomed))
	for _, i := range doomed {
		id := entries[i].ID
		if kept[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
