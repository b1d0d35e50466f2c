package irt

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Analysis holds descriptive statistics over the item bank for diagnostic
// dashboards. Numeric reductions delegate to gonum.org/v1/gonum/stat
// rather than hand-rolled mean/stddev/median loops.
type Analysis struct {
	TotalItems int

	DifficultyMin    float64
	DifficultyMax    float64
	DifficultyMean   float64
	DifficultyMedian float64
	DifficultyStdDev float64

	DiscriminationMin    float64
	DiscriminationMax    float64
	DiscriminationMean   float64
	DiscriminationMedian float64

	EasyCount   int
	MediumCount int
	HardCount   int

	MainTopicCounts map[string]int
	SubTopicCounts  map[string]int
	TotalMainTopics int
	TotalSubTopics  int
	Top5MainTopics  []TopicCount
}

// TopicCount pairs a topic id with the number of bank items it covers.
type TopicCount struct {
	TopicID string
	Count   int
}

// Analyze computes the full analysis bundle over the bank.
func Analyze(bank []Item, difficulties map[string]float64) Analysis {
	if len(bank) == 0 {
		return Analysis{MainTopicCounts: map[string]int{}, SubTopicCounts: map[string]int{}}
	}

	diffs := make([]float64, len(bank))
	discs := make([]float64, len(bank))
	mainCounts := make(map[string]int)
	subCounts := make(map[string]int)

	var easy, medium, hard int
	for i, it := range bank {
		b := difficultyOf(it, difficulties)
		diffs[i] = b
		discs[i] = it.Discrimination

		switch DifficultyBucket(b) {
		case "easy":
			easy++
		case "medium":
			medium++
		default:
			hard++
		}

		mainTopic := it.MainTopicID
		if mainTopic == "" {
			mainTopic = "unknown"
		}
		mainCounts[mainTopic]++

		subTopic := it.SubTopicID
		if subTopic == "" {
			subTopic = "unknown"
		}
		subCounts[subTopic]++
	}

	sortedDiffs := append([]float64(nil), diffs...)
	sort.Float64s(sortedDiffs)
	sortedDiscs := append([]float64(nil), discs...)
	sort.Float64s(sortedDiscs)

	top5 := topNByCount(mainCounts, 5)

	return Analysis{
		TotalItems: len(bank),

		DifficultyMin:    sortedDiffs[0],
		DifficultyMax:    sortedDiffs[len(sortedDiffs)-1],
		DifficultyMean:   stat.Mean(diffs, nil),
		DifficultyMedian: stat.Quantile(0.5, stat.Empirical, sortedDiffs, nil),
		DifficultyStdDev: stat.StdDev(diffs, nil),

		DiscriminationMin:    sortedDiscs[0],
		DiscriminationMax:    sortedDiscs[len(sortedDiscs)-1],
		DiscriminationMean:   stat.Mean(discs, nil),
		DiscriminationMedian: stat.Quantile(0.5, stat.Empirical, sortedDiscs, nil),

		EasyCount:   easy,
		MediumCount: medium,
		HardCount:   hard,

		MainTopicCounts: mainCounts,
		SubTopicCounts:  subCounts,
		TotalMainTopics: len(mainCounts),
		TotalSubTopics:  len(subCounts),
		Top5MainTopics:  top5,
	}
}

func topNByCount(counts map[string]int, n int) []TopicCount {
	all := make([]TopicCount, 0, len(counts))
	for id, c := range counts {
		all = append(all, TopicCount{TopicID: id, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].TopicID < all[j].TopicID
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
