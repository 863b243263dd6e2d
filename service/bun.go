package service

import (
	"github.com/goliatone/go-worklog/activity"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/profile"
	"github.com/goliatone/go-worklog/registry"
	"github.com/goliatone/go-worklog/reports"
	"github.com/uptrace/bun"
)

// BunOptions tunes the Bun-backed stores built by NewBunConfig.
type BunOptions struct {
	Clock         types.Clock
	IDGenerator   types.IDGenerator
	Logger        types.Logger
	Hooks         types.Hooks
	FormatOptions []reports.RepositoryOption
}

// NewBunConfig builds every repository on top of db and returns a Config
// ready for New. Callers fill in the generator, feature gate and language.
func NewBunConfig(db *bun.DB, opts BunOptions) (Config, error) {
	profiles, err := profile.NewRepository(profile.RepositoryConfig{DB: db, Clock: opts.Clock})
	if err != nil {
		return Config{}, err
	}
	orgs, err := profile.NewOrganizationRepository(db, opts.Clock)
	if err != nil {
		return Config{}, err
	}
	roles, err := registry.NewRoleRegistry(registry.RoleRegistryConfig{
		DB:          db,
		Clock:       opts.Clock,
		Hooks:       opts.Hooks,
		Logger:      opts.Logger,
		IDGenerator: opts.IDGenerator,
	})
	if err != nil {
		return Config{}, err
	}
	purposes, err := reports.NewPurposeRepository(reports.PurposeRepositoryConfig{DB: db, Clock: opts.Clock, IDGen: opts.IDGenerator})
	if err != nil {
		return Config{}, err
	}
	formats, err := reports.NewFormatRepository(reports.FormatRepositoryConfig{DB: db, Clock: opts.Clock, IDGen: opts.IDGenerator}, opts.FormatOptions...)
	if err != nil {
		return Config{}, err
	}
	entries, err := reports.NewReportRepository(reports.ReportRepositoryConfig{DB: db, Clock: opts.Clock, IDGen: opts.IDGenerator})
	if err != nil {
		return Config{}, err
	}
	images, err := reports.NewImageRepository(reports.ImageRepositoryConfig{DB: db, Clock: opts.Clock, IDGen: opts.IDGenerator})
	if err != nil {
		return Config{}, err
	}
	trail, err := activity.NewRepository(activity.RepositoryConfig{DB: db, Clock: opts.Clock, IDGen: opts.IDGenerator})
	if err != nil {
		return Config{}, err
	}
	return Config{
		ProfileRepository:      profiles,
		OrganizationRepository: orgs,
		RoleRegistry:           roles,
		PurposeRepository:      purposes,
		FormatRepository:       formats,
		ReportRepository:       entries,
		ImageRepository:        images,
		ActivitySink:           trail,
		ActivityRepository:     trail,
		Hooks:                  opts.Hooks,
		Clock:                  opts.Clock,
		IDGenerator:            opts.IDGenerator,
		Logger:                 opts.Logger,
	}, nil
}
