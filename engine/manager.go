package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// Generate freezes every working set of the project into a new DRAFT
// version numbered one above the latest. A DRAFT predecessor passes its
// margin on; an APPROVED one is left untouched and the new version starts
// at zero margin.
func (e *Engine) Generate(ctx context.Context, projectID string) (BOQVersion, error) {
	unlock, err := e.lockProject(ctx, projectID)
	if err != nil {
		return BOQVersion{}, err
	}
	defer unlock()

	project, err := e.project(ctx, projectID)
	if err != nil {
		return BOQVersion{}, err
	}
	sets, err := e.sets.ListWorkingSets(ctx, projectID)
	if err != nil {
		return BOQVersion{}, fmt.Errorf("list working sets: %w", err)
	}

	// Working sets left over from a previous inquiry mode are not part of
	// the BOQ.
	sets = slices.DeleteFunc(sets, func(ws WorkingSet) bool {
		return ws.IsEmpty() || ws.Scope.Check(project.Mode) != nil
	})
	if len(sets) == 0 {
		return BOQVersion{}, &EmptyConfigurationError{ProjectID: projectID}
	}
	slices.SortStableFunc(sets, func(a, b WorkingSet) int {
		return cmp.Compare(a.Scope.String(), b.Scope.String())
	})

	labels := make(map[ScopeKey]string, len(sets))
	for _, ws := range sets {
		label, err := e.scopeLabel(ctx, ws.Scope)
		if err != nil {
			return BOQVersion{}, err
		}
		labels[ws.Scope] = label
	}
	items, subtotal := freeze(sets, labels)

	latest, err := e.versions.LoadLatest(ctx, projectID)
	if err != nil {
		return BOQVersion{}, fmt.Errorf("load latest version: %w", err)
	}
	number, margin := 1, decimal.Zero
	if latest != nil {
		number = latest.Number + 1
		if latest.Status == StatusDraft {
			margin = latest.MarginPercent
		}
	}

	v := BOQVersion{
		ProjectID: projectID,
		Number:    number,
		Status:    StatusDraft,
		LineItems: items,
		Subtotal:  subtotal,
		CreatedAt: e.now().UTC(),
	}.withMargin(margin)

	if err := ctx.Err(); err != nil {
		return BOQVersion{}, err
	}
	saved, err := e.versions.SaveVersion(ctx, v)
	if err != nil {
		return BOQVersion{}, fmt.Errorf("save version %d: %w", number, err)
	}
	return saved, nil
}

// ApplyMargin sets the margin of the latest DRAFT version and recomputes its
// grand total.
func (e *Engine) ApplyMargin(ctx context.Context, projectID string, number int, percent decimal.Decimal) (BOQVersion, error) {
	if percent.IsNegative() {
		return BOQVersion{}, &InvalidMarginError{Percent: percent}
	}
	return e.transition(ctx, projectID, number, func(v BOQVersion) BOQVersion {
		return v.withMargin(percent)
	})
}

// Approve locks the latest DRAFT version permanently.
func (e *Engine) Approve(ctx context.Context, projectID string, number int) (BOQVersion, error) {
	return e.transition(ctx, projectID, number, func(v BOQVersion) BOQVersion {
		at := e.now().UTC()
		v.Status = StatusApproved
		v.ApprovedAt = &at
		return v
	})
}

// transition applies fn to version number of the project if it is the
// latest version and still DRAFT.
func (e *Engine) transition(ctx context.Context, projectID string, number int, fn func(BOQVersion) BOQVersion) (BOQVersion, error) {
	unlock, err := e.lockProject(ctx, projectID)
	if err != nil {
		return BOQVersion{}, err
	}
	defer unlock()

	versions, err := e.versions.LoadVersions(ctx, projectID)
	if err != nil {
		return BOQVersion{}, fmt.Errorf("load versions: %w", err)
	}
	i := slices.IndexFunc(versions, func(v BOQVersion) bool { return v.Number == number })
	if i < 0 {
		return BOQVersion{}, versionNotFound(projectID, number)
	}
	target := versions[i]
	if target.IsApproved() {
		return BOQVersion{}, &VersionLockedError{ProjectID: projectID, Number: number, Reason: "version is approved"}
	}
	latest := slices.MaxFunc(versions, func(a, b BOQVersion) int { return cmp.Compare(a.Number, b.Number) })
	if latest.Number != number {
		return BOQVersion{}, &VersionLockedError{
			ProjectID: projectID,
			Number:    number,
			Reason:    "superseded by version " + strconv.Itoa(latest.Number),
		}
	}

	if err := ctx.Err(); err != nil {
		return BOQVersion{}, err
	}
	saved, err := e.versions.SaveVersion(ctx, fn(target))
	if err != nil {
		return BOQVersion{}, fmt.Errorf("save version %d: %w", number, err)
	}
	return saved, nil
}

func versionNotFound(projectID string, number int) error {
	return &NotFoundError{Entity: "BOQ version", ID: projectID + "#" + strconv.Itoa(number)}
}

// Versions lists a project's versions in number order.
func (e *Engine) Versions(ctx context.Context, projectID string) ([]BOQVersion, error) {
	versions, err := e.versions.LoadVersions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load versions: %w", err)
	}
	slices.SortFunc(versions, func(a, b BOQVersion) int { return cmp.Compare(a.Number, b.Number) })
	return versions, nil
}

func (e *Engine) Version(ctx context.Context, projectID string, number int) (BOQVersion, error) {
	versions, err := e.Versions(ctx, projectID)
	if err != nil {
		return BOQVersion{}, err
	}
	i := slices.IndexFunc(versions, func(v BOQVersion) bool { return v.Number == number })
	if i < 0 {
		return BOQVersion{}, versionNotFound(projectID, number)
	}
	return versions[i], nil
}

// Latest returns the highest-numbered version, or nil if none was generated.
func (e *Engine) Latest(ctx context.Context, projectID string) (*BOQVersion, error) {
	v, err := e.versions.LoadLatest(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load latest version: %w", err)
	}
	return v, nil
}

// Summary groups a version's line items by kind.
func (e *Engine) Summary(ctx context.Context, projectID string, number int) (Summary, error) {
	v, err := e.Version(ctx, projectID, number)
	if err != nil {
		return Summary{}, err
	}
	return GroupByKind(v), nil
}

// Export renders a version in any state. It never mutates the version.
func (e *Engine) Export(ctx context.Context, projectID string, number int, format ExportFormat) ([]byte, error) {
	if e.renderer == nil {
		return nil, ErrNoRenderer
	}
	project, err := e.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	v, err := e.Version(ctx, projectID, number)
	if err != nil {
		return nil, err
	}
	view := ExportView{Project: project, Version: v, Summary: GroupByKind(v)}

	switch format {
	case FormatPDF:
		return e.renderer.RenderPDF(view)
	case FormatExcel:
		return e.renderer.RenderExcel(view)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}
