package irt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func blueprintBank() []Item {
	return []Item{
		{ID: "e1", MainTopicID: "algebra", SubTopicID: "linear", Difficulty: -2.0, Discrimination: 1.0},
		{ID: "e2", MainTopicID: "algebra", SubTopicID: "linear", Difficulty: -1.5, Discrimination: 1.0},
		{ID: "m1", MainTopicID: "algebra", SubTopicID: "quadratic", Difficulty: 0.0, Discrimination: 1.0},
		{ID: "m2", MainTopicID: "algebra", SubTopicID: "quadratic", Difficulty: 0.8, Discrimination: 1.0},
		{ID: "h1", MainTopicID: "algebra", SubTopicID: "quadratic", Difficulty: 2.0, Discrimination: 1.0},
		{ID: "g1", MainTopicID: "geometry", SubTopicID: "angles", Difficulty: 0.5, Discrimination: 1.0},
	}
}

func TestMaterialize_ExplicitFormResolvesDifficultyAndDiscrimination(t *testing.T) {
	override := 1.7
	bp := ExamBlueprint{
		ExplicitItems: []ExamItem{
			{ItemID: "m1"},                                        // difficulty from map
			{ItemID: "m2", DifficultyOvr: &override},              // explicit override wins
			{ItemID: "ghost", Discrimination: 1.4},                // unknown item -> default b=0
			{ItemID: "e1", Discrimination: -2.0},                  // non-positive discrimination -> 1.0
		},
		PassingThreshold: 0.6,
	}
	difficulties := map[string]float64{"m1": 0.3, "m2": 0.8, "e1": -2.0}

	out := Materialize(bp, blueprintBank(), difficulties, rand.New(rand.NewSource(7)))
	assert.Len(t, out, 4)

	assert.Equal(t, 0.3, out[0].Difficulty)
	assert.Equal(t, 1.0, out[0].Discrimination)
	assert.Equal(t, "algebra", out[0].MainTopicID)

	assert.Equal(t, 1.7, out[1].Difficulty)

	assert.Equal(t, 0.0, out[2].Difficulty)
	assert.Equal(t, 1.4, out[2].Discrimination)
	assert.Equal(t, "", out[2].MainTopicID)

	assert.Equal(t, 1.0, out[3].Discrimination)
}

func TestMaterialize_TopicFormSamplesPerBucketWithoutReplacement(t *testing.T) {
	bp := ExamBlueprint{
		TopicBlueprints: []TopicBlueprint{
			{TopicID: "algebra", Kind: TopicKindMain, Counts: DifficultyCounts{Easy: 1, Medium: 2, Hard: 1}},
		},
		PassingThreshold: 0.7,
	}

	out := Materialize(bp, blueprintBank(), nil, rand.New(rand.NewSource(7)))
	assert.Len(t, out, 4)

	seen := map[string]bool{}
	var easy, medium, hard int
	for _, m := range out {
		assert.False(t, seen[m.ItemID], "sampled the same item twice")
		seen[m.ItemID] = true
		assert.Equal(t, "algebra", m.MainTopicID)
		switch DifficultyBucket(m.Difficulty) {
		case "easy":
			easy++
		case "medium":
			medium++
		default:
			hard++
		}
	}
	assert.Equal(t, 1, easy)
	assert.Equal(t, 2, medium)
	assert.Equal(t, 1, hard)
}

func TestMaterialize_TopicFormTakesAllWhenBucketIsShort(t *testing.T) {
	bp := ExamBlueprint{
		TopicBlueprints: []TopicBlueprint{
			{TopicID: "geometry", Kind: TopicKindMain, Counts: DifficultyCounts{Easy: 3, Medium: 3, Hard: 3}},
		},
		PassingThreshold: 0.7,
	}

	// geometry has a single medium item; every other bucket is empty.
	out := Materialize(bp, blueprintBank(), nil, rand.New(rand.NewSource(7)))
	assert.Len(t, out, 1)
	assert.Equal(t, "g1", out[0].ItemID)
}

func TestMaterialize_ConcatenatesAcrossTopicBlueprints(t *testing.T) {
	bp := ExamBlueprint{
		TopicBlueprints: []TopicBlueprint{
			{TopicID: "algebra", Kind: TopicKindMain, Counts: DifficultyCounts{Medium: 1}},
			{TopicID: "geometry", Kind: TopicKindMain, Counts: DifficultyCounts{Medium: 1}},
		},
		PassingThreshold: 0.7,
	}

	out := Materialize(bp, blueprintBank(), nil, rand.New(rand.NewSource(7)))
	assert.Len(t, out, 2)
	assert.Equal(t, "algebra", out[0].MainTopicID)
	assert.Equal(t, "geometry", out[1].MainTopicID)
}

func TestDifficultyBucket_BoundaryValues(t *testing.T) {
	assert.Equal(t, "easy", DifficultyBucket(-3.0))
	assert.Equal(t, "easy", DifficultyBucket(-1.01))
	assert.Equal(t, "medium", DifficultyBucket(-1.0))
	assert.Equal(t, "medium", DifficultyBucket(1.0))
	assert.Equal(t, "hard", DifficultyBucket(1.01))
	assert.Equal(t, "hard", DifficultyBucket(3.0))
}
