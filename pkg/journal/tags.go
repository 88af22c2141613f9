package journal

import (
	"context"
	"sort"
	"strings"
)

// TagCount is a tag label with the number of entries carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SplitTags splits a raw tag string on commas, trimming labels and dropping
// empty or repeated ones.
func SplitTags(raw string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// ListTags returns every distinct tag label in use, sorted alphabetically.
func (s *Service) ListTags(ctx context.Context) ([]TagCount, error) {
	raws, err := s.store.ListTagsRaw(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	counts := make(map[string]int)
	for _, raw := range raws {
		for _, tag := range SplitTags(raw) {
			counts[tag]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}
