package irt

import "math/rand"

// MaterializedExamItem is one item resolved from an ExamBlueprint, ready for
// PassEvaluator.Evaluate.
type MaterializedExamItem struct {
	ItemID         string
	MainTopicID    string
	Difficulty     float64
	Discrimination float64
}

// Materialize resolves an ExamBlueprint into a concrete item list.
// For the explicit form, items are used as supplied (falling back to the
// difficulty map / default discrimination for unresolved fields). For the
// topic form, the bank items whose main topic id (Kind "sub": sub topic id)
// equals the blueprint's TopicID are bucketed by difficulty (easy=[-3,-1), medium=[-1,1],
// hard=(1,3]) and sampled without replacement up to each bucket's requested
// count, taking all available items when fewer exist than requested.
func Materialize(
	blueprint ExamBlueprint,
	bank []Item,
	difficulties map[string]float64,
	rng *rand.Rand,
) []MaterializedExamItem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	if blueprint.IsExplicit() {
		itemByID := make(map[string]Item, len(bank))
		for _, it := range bank {
			itemByID[it.ID] = it
		}

		out := make([]MaterializedExamItem, 0, len(blueprint.ExplicitItems))
		for _, ei := range blueprint.ExplicitItems {
			b := 0.0
			if ei.DifficultyOvr != nil {
				b = *ei.DifficultyOvr
			} else if mapped, ok := difficulties[ei.ItemID]; ok {
				b = mapped
			}
			a := ei.Discrimination
			if a <= 0 {
				a = 1.0
			}
			out = append(out, MaterializedExamItem{
				ItemID:         ei.ItemID,
				MainTopicID:    itemByID[ei.ItemID].MainTopicID,
				Difficulty:     b,
				Discrimination: a,
			})
		}
		return out
	}

	var out []MaterializedExamItem
	for _, tb := range blueprint.TopicBlueprints {
		var candidates []Item
		for _, it := range bank {
			topicID := it.MainTopicID
			if tb.Kind == TopicKindSub {
				topicID = it.SubTopicID
			}
			if topicID == tb.TopicID {
				candidates = append(candidates, it)
			}
		}

		easy, medium, hard := bucketByDifficulty(candidates, difficulties)

		out = append(out, sampleBucket(easy, difficulties, tb.Counts.Easy, rng)...)
		out = append(out, sampleBucket(medium, difficulties, tb.Counts.Medium, rng)...)
		out = append(out, sampleBucket(hard, difficulties, tb.Counts.Hard, rng)...)
	}
	return out
}

// DifficultyBucket classifies a standard-normal difficulty into the
// easy/medium/hard bands used by blueprint sampling and bank analysis.
func DifficultyBucket(b float64) string {
	switch {
	case b < -1:
		return "easy"
	case b <= 1:
		return "medium"
	default:
		return "hard"
	}
}

func bucketByDifficulty(items []Item, difficulties map[string]float64) (easy, medium, hard []Item) {
	for _, it := range items {
		b := difficultyOf(it, difficulties)
		switch DifficultyBucket(b) {
		case "easy":
			easy = append(easy, it)
		case "medium":
			medium = append(medium, it)
		default:
			hard = append(hard, it)
		}
	}
	return
}

func sampleBucket(items []Item, difficulties map[string]float64, count int, rng *rand.Rand) []MaterializedExamItem {
	if count <= 0 || len(items) == 0 {
		return nil
	}
	take := count
	if take > len(items) {
		take = len(items)
	}

	perm := rng.Perm(len(items))
	out := make([]MaterializedExamItem, 0, take)
	for _, idx := range perm[:take] {
		it := items[idx]
		out = append(out, MaterializedExamItem{
			ItemID:         it.ID,
			MainTopicID:    it.MainTopicID,
			Difficulty:     difficultyOf(it, difficulties),
			Discrimination: it.Discrimination,
		})
	}
	return out
}
