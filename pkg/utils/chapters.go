package utils

import (
	"sort"
	"strconv"
	"strings"
)

// ChapterNumber parses the numeric suffix of a "chapter_N" key. Keys
// without a numeric suffix parse as 0.
func ChapterNumber(key string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(key, "chapter_"))
	return n
}

// SortedChapterKeys returns a manuscript's keys in chapter order, so
// chapter_10 follows chapter_9 rather than chapter_1.
func SortedChapterKeys(manuscript map[string]string) []string {
	keys := make([]string, 0, len(manuscript))
	for k := range manuscript {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return ChapterNumber(keys[i]) < ChapterNumber(keys[j])
	})
	return keys
}
