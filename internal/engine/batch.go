package engine

import (
	"context"
	"runtime"
	"sync"

	"irt-diagnostic-engine/internal/enginerr"
	"irt-diagnostic-engine/internal/irt"
)

// maxBatchUsers caps a single EstimateAbilitiesBatch call.
const maxBatchUsers = 100

// BatchAbilityResult pairs one user's estimation outcome with an error
// placeholder, so one user's NotFound doesn't fail the whole batch.
type BatchAbilityResult struct {
	UserID  string
	Ability irt.UserAbility
	Err     error
}

// EstimateAbilitiesBatch fans out EstimateAbility across up to 100 users
// on a bounded worker pool. Each user's estimation is an independent pure
// computation; results come back in input order.
func (e *Engine) EstimateAbilitiesBatch(ctx context.Context, userIDs []string) ([]BatchAbilityResult, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	if len(userIDs) > maxBatchUsers {
		return nil, enginerr.BadRequestf("batch ability estimation accepts at most %d users, got %d", maxBatchUsers, len(userIDs))
	}
	e.metrics.BatchEstimationSize.Observe(float64(len(userIDs)))

	results := make([]BatchAbilityResult, len(userIDs))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(userIDs) {
		workers = len(userIDs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				userID := userIDs[i]
				ability, err := e.EstimateAbility(ctx, userID, nil)
				results[i] = BatchAbilityResult{UserID: userID, Ability: ability, Err: err}
			}
		}()
	}

	for i := range userIDs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, nil
}
