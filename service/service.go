package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-worklog/command"
	"github.com/goliatone/go-worklog/hierarchy"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/query"
	"github.com/goliatone/go-worklog/scope"
)

// Service is the entry point for go-worklog. It wires repositories,
// registries, hooks, and command/query facades supplied by the host
// application.
type Service struct {
	cfg        Config
	commands   Commands
	queries    Queries
	resolver   query.VisibilityResolver
	activity   types.ActivityRepository
	scopeGuard scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	ChangeRole      *command.ChangeRoleCommand
	SetAdminFlag    *command.SetAdminFlagCommand
	CreateRole      *command.CreateRoleCommand
	RenameRole      *command.RenameRoleCommand
	DeleteRole      *command.DeleteRoleCommand
	MoveRole        *command.MoveRoleCommand
	UpdateProfile   *command.UpdateProfileCommand
	SavePurpose     *command.SavePurposeCommand
	DeletePurpose   *command.DeletePurposeCommand
	SaveFormat      *command.SaveFormatCommand
	DeleteFormat    *command.DeleteFormatCommand
	SaveReport      *command.SaveReportCommand
	DeleteReport    *command.DeleteReportCommand
	UploadImage     *command.UploadImageCommand
	DeleteImage     *command.DeleteImageCommand
	GenerateReport  *command.GenerateReportCommand
	ExtractInsights *command.ExtractInsightsCommand
	AnalyzeStyle    *command.AnalyzeStyleCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	VisibleUsers  *query.VisibleUsersQuery
	ProfileDetail *query.ProfileQuery
	RoleList      *query.RoleListQuery
	ActivityFeed  *query.ActivityFeedQuery
	PurposeList   *query.PurposeListQuery
	PurposeDetail *query.PurposeDetailQuery
	FormatList    *query.FormatListQuery
	FormatDetail  *query.FormatDetailQuery
	ReportList    *query.ReportListQuery
	ReportDetail  *query.ReportDetailQuery
	Image         *query.ImageQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB, cached repositories, hooks, etc.).
type Config struct {
	ProfileRepository      types.ProfileRepository
	OrganizationRepository types.OrganizationRepository
	RoleRegistry           types.RoleRegistry
	PurposeRepository      types.PurposeRepository
	FormatRepository       types.FormatRepository
	ReportRepository       types.ReportRepository
	ImageRepository        types.ImageRepository
	ActivitySink           types.ActivitySink
	ActivityRepository     types.ActivityRepository
	Visibility             query.VisibilityResolver
	Generator              types.TextGenerator
	FeatureGate            featuregate.FeatureGate
	HistorySize            int
	Language               string
	Hooks                  types.Hooks
	Clock                  types.Clock
	IDGenerator            types.IDGenerator
	Logger                 types.Logger
	ScopeResolver          types.ScopeResolver
	AuthorizationPolicy    types.AuthorizationPolicy
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}
	resolver := norm.Visibility
	if resolver == nil && norm.ProfileRepository != nil {
		if built, err := hierarchy.NewResolver(hierarchy.ResolverConfig{
			Profiles: norm.ProfileRepository,
			Logger:   norm.Logger,
		}); err == nil {
			resolver = built
		} else {
			norm.Logger.Error("go-worklog: hierarchy resolver initialization failed", err)
		}
	}

	s := &Service{
		cfg:        norm,
		resolver:   resolver,
		activity:   actRepo,
		scopeGuard: scope.Ensure(newGuard(norm)),
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func newGuard(cfg Config) scope.Guard {
	if cfg.ScopeResolver == nil && cfg.AuthorizationPolicy == nil {
		return scope.DefaultGuard()
	}
	resolver := cfg.ScopeResolver
	if resolver == nil {
		resolver = types.OrganizationScopeResolver{}
	}
	policy := cfg.AuthorizationPolicy
	if policy == nil {
		policy = types.PrivilegePolicy{}
	}
	return scope.NewGuard(resolver, policy)
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
// The text generator is optional; AI commands fail with
// types.ErrGeneratorUnavailable without it.
func (s *Service) Ready() bool {
	return s.HealthCheck(context.Background()) == nil
}

// HealthCheck surfaces missing configuration so transports can refuse to
// start.
func (s *Service) HealthCheck(context.Context) error {
	switch {
	case s == nil:
		return types.ErrServiceNotReady
	case s.cfg.ProfileRepository == nil,
		s.cfg.RoleRegistry == nil,
		s.cfg.PurposeRepository == nil,
		s.cfg.FormatRepository == nil,
		s.cfg.ReportRepository == nil,
		s.cfg.ImageRepository == nil,
		s.cfg.ActivitySink == nil,
		s.activity == nil,
		s.resolver == nil:
		return types.ErrServiceNotReady
	}
	return nil
}

// ScopeGuard exposes the guard instance used internally so transports can
// reuse the same resolver/policy combination.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.DefaultGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

// Visibility returns the hierarchy resolver backing the admin pages.
func (s *Service) Visibility() query.VisibilityResolver {
	if s == nil {
		return nil
	}
	return s.resolver
}

// ActivitySink returns the configured sink so transports can record
// auxiliary workflows.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

func (s *Service) buildCommands() Commands {
	roles := command.RoleCommandConfig{
		Registry:   s.cfg.RoleRegistry,
		Profiles:   s.cfg.ProfileRepository,
		Activity:   s.cfg.ActivitySink,
		Hooks:      s.cfg.Hooks,
		Clock:      s.cfg.Clock,
		Logger:     s.cfg.Logger,
		ScopeGuard: s.scopeGuard,
	}
	worklog := command.WorklogCommandConfig{
		Purposes:   s.cfg.PurposeRepository,
		Formats:    s.cfg.FormatRepository,
		Reports:    s.cfg.ReportRepository,
		Images:     s.cfg.ImageRepository,
		Hooks:      s.cfg.Hooks,
		Clock:      s.cfg.Clock,
		ScopeGuard: s.scopeGuard,
	}
	ai := command.AICommandConfig{
		Generator:   s.cfg.Generator,
		Purposes:    s.cfg.PurposeRepository,
		Formats:     s.cfg.FormatRepository,
		Reports:     s.cfg.ReportRepository,
		Images:      s.cfg.ImageRepository,
		Profiles:    s.cfg.ProfileRepository,
		FeatureGate: s.cfg.FeatureGate,
		ScopeGuard:  s.scopeGuard,
		HistorySize: s.cfg.HistorySize,
		Language:    s.cfg.Language,
		Clock:       s.cfg.Clock,
		Logger:      s.cfg.Logger,
	}
	return Commands{
		ChangeRole:   command.NewChangeRoleCommand(roles),
		SetAdminFlag: command.NewSetAdminFlagCommand(roles),
		CreateRole:   command.NewCreateRoleCommand(roles),
		RenameRole:   command.NewRenameRoleCommand(roles),
		DeleteRole:   command.NewDeleteRoleCommand(roles),
		MoveRole:     command.NewMoveRoleCommand(roles),
		UpdateProfile: command.NewUpdateProfileCommand(command.ProfileCommandConfig{
			Profiles: s.cfg.ProfileRepository,
			Hooks:    s.cfg.Hooks,
			Clock:    s.cfg.Clock,
		}),
		SavePurpose:     command.NewSavePurposeCommand(worklog),
		DeletePurpose:   command.NewDeletePurposeCommand(worklog),
		SaveFormat:      command.NewSaveFormatCommand(worklog),
		DeleteFormat:    command.NewDeleteFormatCommand(worklog),
		SaveReport:      command.NewSaveReportCommand(worklog),
		DeleteReport:    command.NewDeleteReportCommand(worklog),
		UploadImage:     command.NewUploadImageCommand(worklog),
		DeleteImage:     command.NewDeleteImageCommand(worklog),
		GenerateReport:  command.NewGenerateReportCommand(ai),
		ExtractInsights: command.NewExtractInsightsCommand(ai),
		AnalyzeStyle:    command.NewAnalyzeStyleCommand(ai),
	}
}

func (s *Service) buildQueries() Queries {
	worklog := query.WorklogQueryConfig{
		Purposes:   s.cfg.PurposeRepository,
		Formats:    s.cfg.FormatRepository,
		Reports:    s.cfg.ReportRepository,
		Images:     s.cfg.ImageRepository,
		Visibility: s.resolver,
		ScopeGuard: s.scopeGuard,
	}
	return Queries{
		VisibleUsers:  query.NewVisibleUsersQuery(s.resolver, s.scopeGuard),
		ProfileDetail: query.NewProfileQuery(s.cfg.ProfileRepository, s.resolver, s.scopeGuard),
		RoleList:      query.NewRoleListQuery(s.cfg.RoleRegistry, s.scopeGuard),
		ActivityFeed:  query.NewActivityFeedQuery(s.activity, s.scopeGuard),
		PurposeList:   query.NewPurposeListQuery(worklog),
		PurposeDetail: query.NewPurposeDetailQuery(worklog),
		FormatList:    query.NewFormatListQuery(worklog),
		FormatDetail:  query.NewFormatDetailQuery(worklog),
		ReportList:    query.NewReportListQuery(worklog),
		ReportDetail:  query.NewReportDetailQuery(worklog),
		Image:         query.NewImageQuery(worklog),
	}
}
