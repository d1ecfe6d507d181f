package report

import (
	"context"
	"fmt"
	"time"

	"github.com/natea/berserk2/internal/model"
	"github.com/natea/berserk2/internal/store"
)

// Store is the subset of the persistence layer the reports need.
type Store interface {
	SumRemainingHoursByAssignee(ctx context.Context, sprintID string, day time.Time) ([]store.DayLoadRow, error)
	CurrentSprint(ctx context.Context, day time.Time) (model.Sprint, bool, error)
	ListActors(ctx context.Context) ([]model.Actor, error)
}

// SprintLoadByUser returns, per actor, an array of that actor's load for
// every day in the sprint. Load is the total remaining hours left in a
// sprint day, read from the end-of-day snapshot cache.
func SprintLoadByUser(
	ctx context.Context,
	s Store,
	sprint model.Sprint,
) (map[string][]int, error) {
	days := sprint.IterationDays()
	load := make(map[string][]int)

	for day := 0; day < days; day++ {
		date := sprint.StartDate.AddDate(0, 0, day)

		rows, err := s.SumRemainingHoursByAssignee(ctx, sprint.ID, date)
		if err != nil {
			return nil, fmt.Errorf("aggregating day %d: %w", day, err)
		}

		for _, row := range rows {
			if row.AssignedToID == "" {
				continue
			}
			if _, ok := load[row.AssignedToID]; !ok {
				load[row.AssignedToID] = make([]int, days)
			}
			load[row.AssignedToID][day] = row.RemainingHours
		}
	}

	return load, nil
}
