package registry

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleRegistryConfig configures the Bun-backed role registry.
type RoleRegistryConfig struct {
	DB          *bun.DB
	Roles       repository.Repository[*RoleRecord]
	Clock       types.Clock
	Hooks       types.Hooks
	Logger      types.Logger
	IDGenerator types.IDGenerator
}

// RoleRegistry persists organization roles using Bun. Level assignment,
// in-use checks and reordering run inside a single transaction.
type RoleRegistry struct {
	db     *bun.DB
	roles  repository.Repository[*RoleRecord]
	clock  types.Clock
	hooks  types.Hooks
	logger types.Logger
	idGen  types.IDGenerator
}

var _ types.RoleRegistry = (*RoleRegistry)(nil)

// NewRoleRegistry constructs the default registry. DB is required because
// the multi-row operations use transactions.
func NewRoleRegistry(cfg RoleRegistryConfig) (*RoleRegistry, error) {
	if cfg.DB == nil {
		return nil, errors.New("bun role registry: db must be provided")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	rolesRepo := cfg.Roles
	if rolesRepo == nil {
		rolesRepo = NewRoleRepository(cfg.DB)
	}

	return &RoleRegistry{
		db:     cfg.DB,
		roles:  rolesRepo,
		clock:  clock,
		hooks:  cfg.Hooks,
		logger: logger,
		idGen:  idGen,
	}, nil
}

// NewRoleRepository builds the go-repository-bun repository for roles.
func NewRoleRepository(db *bun.DB) repository.Repository[*RoleRecord] {
	return repository.NewRepository(db, repository.ModelHandlers[*RoleRecord]{
		NewRecord: func() *RoleRecord { return &RoleRecord{} },
		GetID: func(role *RoleRecord) uuid.UUID {
			if role == nil {
				return uuid.Nil
			}
			return role.ID
		},
		SetID: func(role *RoleRecord, id uuid.UUID) {
			if role != nil {
				role.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})
}

// CreateRole inserts a role one level above the most senior role of the
// organization, or at level 0 when the organization has no roles yet.
func (r *RoleRegistry) CreateRole(ctx context.Context, input types.RoleMutation) (*types.Role, error) {
	name := normalizeRoleName(input.Name)
	if name == "" {
		return nil, types.Invalid("name", "required")
	}
	if input.Scope.OrgID == uuid.Nil {
		return nil, types.Invalid("organization", "required")
	}
	now := r.clock.Now()
	role := &RoleRecord{
		ID:             r.idGen.UUID(),
		OrganizationID: input.Scope.OrgID,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var top sql.NullInt64
		err := tx.NewSelect().
			Model((*RoleRecord)(nil)).
			ColumnExpr("MAX(role_level)").
			Where("organization_id = ?", input.Scope.OrgID).
			Scan(ctx, &top)
		if err != nil {
			return err
		}
		if top.Valid {
			role.Level = int(top.Int64) + 1
		}
		_, err = tx.NewInsert().Model(role).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toRole(role)
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     out.ID,
		Action:     "role.created",
		ActorID:    input.ActorID,
		Scope:      input.Scope,
		OccurredAt: now,
		Role:       *out,
	})
	return out, nil
}

// RenameRole updates the role name.
func (r *RoleRegistry) RenameRole(ctx context.Context, id uuid.UUID, input types.RoleMutation) (*types.Role, error) {
	name := normalizeRoleName(input.Name)
	if name == "" {
		return nil, types.Invalid("name", "required")
	}
	role, err := r.getRecord(ctx, id, input.Scope)
	if err != nil {
		return nil, err
	}
	role.Name = name
	role.UpdatedAt = r.clock.Now()
	updated, err := r.roles.Update(ctx, role)
	if err != nil {
		return nil, err
	}
	out := toRole(updated)
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     out.ID,
		Action:     "role.renamed",
		ActorID:    input.ActorID,
		Scope:      input.Scope,
		OccurredAt: role.UpdatedAt,
		Role:       *out,
	})
	return out, nil
}

// DeleteRole removes a role unless a profile still references it, in which
// case types.ErrRoleInUse is returned and nothing is written.
func (r *RoleRegistry) DeleteRole(ctx context.Context, id uuid.UUID, scope types.ScopeFilter, actor uuid.UUID) error {
	role := &RoleRecord{}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(role).
			Where("id = ?", id).
			Where("organization_id = ?", scope.OrgID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrRoleNotFound
		}
		if err != nil {
			return err
		}
		inUse, err := tx.NewSelect().
			TableExpr("profiles").
			Where("role_id = ?", id).
			Count(ctx)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return types.ErrRoleInUse
		}
		_, err = tx.NewDelete().
			Model((*RoleRecord)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     role.ID,
		Action:     "role.deleted",
		ActorID:    actor,
		Scope:      scope,
		OccurredAt: r.clock.Now(),
		Role:       *toRole(role),
	})
	return nil
}

// GetRole returns a single role within the organization scope.
func (r *RoleRegistry) GetRole(ctx context.Context, id uuid.UUID, scope types.ScopeFilter) (*types.Role, error) {
	role, err := r.getRecord(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return toRole(role), nil
}

// ListRoles returns the organization's roles, most senior first.
func (r *RoleRegistry) ListRoles(ctx context.Context, scope types.ScopeFilter) ([]types.Role, error) {
	records, _, err := r.roles.List(ctx,
		scopeSelectCriteria(scope),
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("role_level DESC").OrderExpr("created_at ASC")
		},
	)
	if err != nil {
		return nil, err
	}
	roles := make([]types.Role, 0, len(records))
	for _, record := range records {
		roles = append(roles, *toRole(record))
	}
	return roles, nil
}

// MoveRole swaps the role's level with its neighbor in display order. It
// reports false without writing when the role already sits at that edge.
func (r *RoleRegistry) MoveRole(ctx context.Context, id uuid.UUID, dir types.Direction, scope types.ScopeFilter, actor uuid.UUID) (bool, error) {
	if !dir.Valid() {
		return false, types.Invalid("direction", "must be up or down")
	}
	var moved *RoleRecord
	now := r.clock.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var records []*RoleRecord
		err := tx.NewSelect().
			Model(&records).
			Where("organization_id = ?", scope.OrgID).
			OrderExpr("role_level DESC").
			OrderExpr("created_at ASC").
			Scan(ctx)
		if err != nil {
			return err
		}
		current, neighbor, found := adjacent(records, id, dir)
		if !found {
			return types.ErrRoleNotFound
		}
		if neighbor == nil {
			return nil
		}
		current.Level, neighbor.Level = neighbor.Level, current.Level
		current.UpdatedAt, neighbor.UpdatedAt = now, now
		for _, rec := range []*RoleRecord{current, neighbor} {
			_, err := tx.NewUpdate().
				Model(rec).
				Column("role_level", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		moved = current
		return nil
	})
	if err != nil || moved == nil {
		return false, err
	}
	r.emitRoleEvent(ctx, types.RoleEvent{
		RoleID:     moved.ID,
		Action:     "role.moved." + string(dir),
		ActorID:    actor,
		Scope:      scope,
		OccurredAt: now,
		Role:       *toRole(moved),
	})
	return true, nil
}

// adjacent locates the role and the neighbor it swaps with. neighbor is nil
// when the move would leave the list.
func adjacent(records []*RoleRecord, id uuid.UUID, dir types.Direction) (current, neighbor *RoleRecord, found bool) {
	for idx, rec := range records {
		if rec.ID != id {
			continue
		}
		target := idx + 1
		if dir == types.DirectionUp {
			target = idx - 1
		}
		if target < 0 || target >= len(records) {
			return rec, nil, true
		}
		return rec, records[target], true
	}
	return nil, nil, false
}

func (r *RoleRegistry) getRecord(ctx context.Context, id uuid.UUID, scope types.ScopeFilter) (*RoleRecord, error) {
	role, err := r.roles.GetByID(ctx, id.String(), scopeSelectCriteria(scope))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *RoleRegistry) emitRoleEvent(ctx context.Context, event types.RoleEvent) {
	if r.hooks.AfterRoleChange == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("role hook panic", errors.New("panic in AfterRoleChange"), "panic", rec)
		}
	}()
	r.hooks.AfterRoleChange(ctx, event)
}

func scopeSelectCriteria(scope types.ScopeFilter) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("organization_id = ?", scope.OrgID)
	}
}

func normalizeRoleName(name string) string {
	return strings.TrimSpace(name)
}

func toRole(rec *RoleRecord) *types.Role {
	if rec == nil {
		return nil
	}
	return &types.Role{
		ID:             rec.ID,
		OrganizationID: rec.OrganizationID,
		Name:           rec.Name,
		Level:          rec.Level,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}
