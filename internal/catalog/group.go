package catalog

// GroupByTopic buckets resources by topic, keeping input order within each topic.
func GroupByTopic(resources []Resource) map[string][]Resource {
	grouped := make(map[string][]Resource)
	for _, r := range resources {
		grouped[r.Topic] = append(grouped[r.Topic], r)
	}
	return grouped
}

// GroupByTopicAndDifficulty buckets resources by topic, then by difficulty.
func GroupByTopicAndDifficulty(resources []Resource) map[string]map[string][]Resource {
	grouped := make(map[string]map[string][]Resource)
	for _, r := range resources {
		byDifficulty, ok := grouped[r.Topic]
		if !ok {
			byDifficulty = make(map[string][]Resource)
			grouped[r.Topic] = byDifficulty
		}
		byDifficulty[r.Difficulty] = append(byDifficulty[r.Difficulty], r)
	}
	return grouped
}
