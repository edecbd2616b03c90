package analyze

import "sort"

// TallyStoryLikes counts likes per story owner, most liked first and then by
// name.
func TallyStoryLikes(titles []string) []StoryLikeCount {
	counts := make(map[string]int)
	for _, t := range titles {
		counts[t]++
	}

	out := make([]StoryLikeCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, StoryLikeCount{Name: name, Likes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].Name < out[j].Name
	})
	return out
}
