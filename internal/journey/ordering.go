package journey

import (
	"sort"
	"time"
)

// Reorder recomputes the dense 1..N position sequence for a user's steps.
//
// Waypoints sort by target flag first, then current flag, then arrival date
// with the most recent first; a missing arrival date sorts as the oldest
// possible date. Birth records always come last, in their fetched order.
// The sort is stable: rows that compare equal keep the relative order in
// which they were passed in.
//
// The input slice is mutated in place; the returned slice holds pointers to
// the entries whose Position changed.
func Reorder(steps []*MigrationStep) []*MigrationStep {
	waypoints := make([]*MigrationStep, 0, len(steps))
	birthRecords := make([]*MigrationStep, 0, 1)
	for _, step := range steps {
		if step.Kind == StepKindBirth {
			birthRecords = append(birthRecords, step)
			continue
		}
		waypoints = append(waypoints, step)
	}

	sort.SliceStable(waypoints, func(i, j int) bool {
		left, right := waypoints[i], waypoints[j]
		if left.IsTarget != right.IsTarget {
			return left.IsTarget
		}
		if left.IsCurrent != right.IsCurrent {
			return left.IsCurrent
		}
		return arrivalOf(left).After(arrivalOf(right))
	})

	changed := make([]*MigrationStep, 0, len(steps))
	position := 0
	for _, step := range append(waypoints, birthRecords...) {
		position++
		if step.Position != position {
			step.Position = position
			changed = append(changed, step)
		}
	}
	return changed
}

func arrivalOf(step *MigrationStep) time.Time {
	if step.ArrivedAt == nil {
		return time.Time{}
	}
	return *step.ArrivedAt
}
