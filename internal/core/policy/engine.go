// Package policy implements the hierarchical policy resolution engine and
// its in-process resolution cache. The engine is a pure function over its
// inputs; callers own all I/O.
package policy

import (
	"sort"
	"time"

	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// Resolve picks the single applicable record for the given context from an
// arbitrary candidate set, or nil when none applies.
//
// Survivors of the scope/active/effectiveness filters are ranked by
// specificity (more populated scope wins), then priority ascending (lower
// number wins), then most recent update. Policy ID is the final tie-break
// so the result never depends on candidate input order.
func Resolve(now time.Time, rc domain.ResolutionContext, candidates []domain.PolicyRecord) *domain.PolicyRecord {
	matched := make([]domain.PolicyRecord, 0, len(candidates))
	for _, c := range candidates {
		if !c.Scope.Matches(rc) {
			continue
		}
		if !c.IsActive || !c.IsEffectiveAt(now) {
			continue
		}
		matched = append(matched, c)
	}
	if len(matched) == 0 {
		return nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := matched[i].Scope.Specificity(), matched[j].Scope.Specificity()
		if si != sj {
			return si > sj
		}
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		if !matched[i].LastUpdatedAt.Equal(matched[j].LastUpdatedAt) {
			return matched[i].LastUpdatedAt.After(matched[j].LastUpdatedAt)
		}
		return matched[i].PolicyID < matched[j].PolicyID
	})

	top := matched[0]
	return &top
}
