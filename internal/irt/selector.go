package irt

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrNoCandidates is raised when a selection call has no legal candidate
// item to choose from.
var ErrNoCandidates = errors.New("irt: no candidates available for selection")

// Selector implements the maximum-information next-item choice and the
// non-adaptive initial-set construction.
type Selector struct {
	model ResponseModel
	rng   *rand.Rand
}

// NewSelector builds a selector bound to a response model. rng controls the
// uniform-without-replacement sampling in InitialSet; pass nil to use a
// private source with the fixed seed 1.
func NewSelector(model ResponseModel, rng *rand.Rand) Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return Selector{model: model, rng: rng}
}

// InitialSet builds the non-adaptive initial item set: filter by
// coverage, sort by difficulty, bin into min(N,5) equal-mass bins, sample
// uniformly from each bin, then top up with leftovers until size N.
func (s Selector) InitialSet(bank []Item, difficulties map[string]float64, n int, coverageTopics []string) []Item {
	candidates := Resolve(bank, Pool{Kind: PoolCoverageSet, Topics: coverageTopics})
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	sorted := make([]Item, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return difficultyOf(sorted[i], difficulties) < difficultyOf(sorted[j], difficulties)
	})

	numBins := n
	if numBins > 5 {
		numBins = 5
	}
	perBin := n / numBins

	used := make(map[string]bool, n)
	selected := make([]Item, 0, n)

	for i := 0; i < numBins; i++ {
		start := i * len(sorted) / numBins
		end := (i + 1) * len(sorted) / numBins
		bin := sorted[start:end]
		if len(bin) == 0 {
			continue
		}

		take := perBin
		if take > len(bin) {
			take = len(bin)
		}

		for _, idx := range s.rng.Perm(len(bin))[:take] {
			item := bin[idx]
			if !used[item.ID] {
				used[item.ID] = true
				selected = append(selected, item)
			}
		}
	}

	if len(selected) < n {
		for _, item := range sorted {
			if len(selected) >= n {
				break
			}
			if !used[item.ID] {
				used[item.ID] = true
				selected = append(selected, item)
			}
		}
	}

	if len(selected) > n {
		selected = selected[:n]
	}
	return selected
}

// SelectNext picks the candidate with maximum Fisher information at the
// given ability, already filtered by the caller to unseen + topic-legal
// items. Ties go to the first candidate in input order.
func (s Selector) SelectNext(candidates []Item, theta float64) (Item, error) {
	if len(candidates) == 0 {
		return Item{}, ErrNoCandidates
	}

	best := candidates[0]
	bestInfo := s.model.Information(theta, best.Difficulty, best.Discrimination)

	for _, item := range candidates[1:] {
		info := s.model.Information(theta, item.Difficulty, item.Discrimination)
		if info > bestInfo {
			best = item
			bestInfo = info
		}
	}
	return best, nil
}

// ActiveTopic resolves the topic-sequencing policy: given a quota map
// in caller-supplied insertion order and the answered-count per topic, the
// active topic is the first one whose answered count is below its
// requirement. Returns ("", false) when every quota is met.
func ActiveTopic(quotas []TopicQuota, answeredCounts map[string]int) (string, bool) {
	for _, q := range quotas {
		if answeredCounts[q.TopicID] < q.Required {
			return q.TopicID, true
		}
	}
	return "", false
}

// TopicQuota is one entry of a caller-supplied per-topic quota map,
// preserved as a slice (not a Go map) so the caller's insertion order
// survives; that order decides which topic becomes active first.
type TopicQuota struct {
	TopicID  string
	Required int
}

// AnsweredCountsByTopic tallies, for each topic id referenced by quotas, how
// many session answers belong to it, matching on either main or sub topic
// id.
func AnsweredCountsByTopic(session SessionProgress, topics TopicLookup, quotas []TopicQuota) map[string]int {
	quotaTopics := make(map[string]bool, len(quotas))
	for _, q := range quotas {
		quotaTopics[q.TopicID] = true
	}

	counts := make(map[string]int)
	for _, ans := range session.Answers {
		main, sub := topics.Topics(ans.ItemID)
		if quotaTopics[main] {
			counts[main]++
		} else if quotaTopics[sub] {
			counts[sub]++
		}
	}
	return counts
}

// FilterByTopic restricts items to those whose main or sub topic id equals
// topicID.
func FilterByTopic(items []Item, topicID string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.MainTopicID == topicID || it.SubTopicID == topicID {
			out = append(out, it)
		}
	}
	return out
}

// ExcludeAnswered drops items whose id is in answered.
func ExcludeAnswered(items []Item, answered map[string]bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !answered[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// FilterByDirection restricts candidates to strictly harder (direction>0)
// or strictly easier (direction<0) than currentDifficulty, the monotone
// preview constraint. direction==0 returns candidates unchanged.
func FilterByDirection(items []Item, currentDifficulty float64, direction int) []Item {
	if direction == 0 {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if direction > 0 && it.Difficulty > currentDifficulty {
			out = append(out, it)
		} else if direction < 0 && it.Difficulty < currentDifficulty {
			out = append(out, it)
		}
	}
	return out
}

// Resolve dispatches the tagged candidate-pool variant once at entry,
// instead of scattering pool-kind checks through the selection path.
func Resolve(bank []Item, pool Pool) []Item {
	switch pool.Kind {
	case PoolCoverageSet:
		return filterByCoverage(bank, pool.Topics)
	case PoolActiveTopicOnly:
		return FilterByTopic(bank, pool.TopicID)
	default:
		return bank
	}
}

func filterByCoverage(bank []Item, coverageTopics []string) []Item {
	if len(coverageTopics) == 0 {
		return bank
	}
	cov := make(map[string]bool, len(coverageTopics))
	for _, t := range coverageTopics {
		cov[t] = true
	}
	out := make([]Item, 0, len(bank))
	for _, it := range bank {
		if cov[it.MainTopicID] || cov[it.SubTopicID] {
			out = append(out, it)
		}
	}
	return out
}

func difficultyOf(item Item, difficulties map[string]float64) float64 {
	if b, ok := difficulties[item.ID]; ok {
		return b
	}
	return item.Difficulty
}
