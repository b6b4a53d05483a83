package migration

import (
	"context"
	"fmt"
)

// ClassStatus tells whether a collection already uses named vectors.
type ClassStatus struct {
	Name         string `json:"name"`
	NamedVectors bool   `json:"named_vectors"`
}

// NeedsMigration reports whether the collection still has the legacy layout.
func (s ClassStatus) NeedsMigration() bool {
	return !s.NamedVectors
}

// Inspect lists the collections whose name starts with prefix and reports
// which of them still lack a vectorConfig.
func (o *Orchestrator) Inspect(ctx context.Context, prefix string) ([]ClassStatus, error) {
	classes, err := o.store.ClassesWithPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	out := make([]ClassStatus, 0, len(classes))
	legacy := 0
	for _, c := range classes {
		st := ClassStatus{Name: c.Class, NamedVectors: c.HasNamedVectors()}
		if st.NeedsMigration() {
			legacy++
		}
		out = append(out, st)
	}

	o.logger.InfoWithContext(ctx, "Inspected collections", nil, map[string]interface{}{
		"prefix":          prefix,
		"total":           len(out),
		"needs_migration": legacy,
	})
	return out, nil
}
