package command

import (
	"context"

	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/scope"
	"github.com/google/uuid"
)

// WorklogCommandConfig wires the purpose, format, report and image commands.
type WorklogCommandConfig struct {
	Purposes   types.PurposeRepository
	Formats    types.FormatRepository
	Reports    types.ReportRepository
	Images     types.ImageRepository
	Hooks      types.Hooks
	Clock      types.Clock
	ScopeGuard scope.Guard
}

// ownerGuard authorizes report writes and checks record ownership.
type ownerGuard struct {
	guard scope.Guard
}

func newOwnerGuard(g scope.Guard) ownerGuard {
	return ownerGuard{guard: safeScopeGuard(g)}
}

func (o ownerGuard) enforce(ctx context.Context, viewer types.Viewer, target uuid.UUID) error {
	if viewer.IsZero() {
		return ErrViewerRequired
	}
	_, err := o.guard.Enforce(ctx, viewer, types.ScopeFilter{UserID: viewer.ID}, types.PolicyActionReportsWrite, target)
	return err
}

func ownedBy(viewer types.Viewer, owner uuid.UUID) error {
	if owner != viewer.ID {
		return types.ErrForbidden
	}
	return nil
}

func ownPurpose(ctx context.Context, repo types.PurposeRepository, viewer types.Viewer, id uuid.UUID) (*types.Purpose, error) {
	purpose, err := repo.GetPurpose(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(viewer, purpose.UserID); err != nil {
		return nil, err
	}
	return purpose, nil
}

func ownFormat(ctx context.Context, repo types.FormatRepository, viewer types.Viewer, id uuid.UUID) (*types.ReportFormat, error) {
	format, err := repo.GetFormat(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(viewer, format.UserID); err != nil {
		return nil, err
	}
	return format, nil
}

func ownReport(ctx context.Context, repo types.ReportRepository, viewer types.Viewer, id uuid.UUID) (*types.Report, error) {
	report, err := repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownedBy(viewer, report.UserID); err != nil {
		return nil, err
	}
	return report, nil
}

// ownImages loads the images and fails when any of them belongs to someone
// else or does not exist.
func ownImages(ctx context.Context, repo types.ImageRepository, viewer types.Viewer, ids []uuid.UUID) ([]types.Image, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	images, err := repo.GetImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(images) != len(ids) {
		return nil, types.ErrImageNotFound
	}
	for _, img := range images {
		if err := ownedBy(viewer, img.UserID); err != nil {
			return nil, err
		}
	}
	return images, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
