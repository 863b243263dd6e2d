package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-auth/middleware/csrf"
	cfs "github.com/goliatone/go-composite-fs"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	worklog "github.com/goliatone/go-worklog"
	"github.com/goliatone/go-worklog/activity"
	"github.com/goliatone/go-worklog/cmd/web/config"
	"github.com/goliatone/go-worklog/command"
	"github.com/goliatone/go-worklog/llm"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/profile"
	"github.com/goliatone/go-worklog/registry"
	"github.com/goliatone/go-worklog/reports"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	bunDB    *bun.DB
	auth     auth.Authenticator
	auther   auth.HTTPAuthenticator
	repo     auth.RepositoryManager
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
	worklog  *worklog.Service
	profiles types.ProfileRepository
	orgs     types.OrganizationRepository
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) SetRepository(repo auth.RepositoryManager) {
	a.repo = repo
}

func (a *App) SetDB(db *bun.DB) {
	a.bunDB = db
}

func (a *App) SetLogger(lgr *glog.BaseLogger) *App {
	a.logger = lgr
	return a
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func (a *App) SetHTTPServer(srv router.Server[*fiber.App]) {
	a.srv = srv
}

func (a *App) SetAuthenticator(auth auth.Authenticator) {
	a.auth = auth
}

func (a *App) SetHTTPAuth(auther auth.HTTPAuthenticator) {
	a.auther = auther
}

func (a *App) SetWorklogService(svc *worklog.Service) {
	a.worklog = svc
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8978",
		},
		Auth: config.AuthConfig{
			SigningKey:            "changeme-secret-key-please-use-env-var",
			SigningMethod:         "HS256",
			ContextKey:            "user",
			TokenExpiration:       3600,
			ExtendedTokenDuration: 86400,
			TokenLookup:           "cookie:auth_token",
			AuthScheme:            "Bearer",
			Issuer:                "go-worklog-web",
			RejectedRouteKey:      "rejected_route",
			RejectedRouteDefault:  "/auth/login",
		},
		Persistence: config.PersistenceConfig{
			Driver:         "sqlite",
			Server:         "file:worklog.db?_journal_mode=WAL&cache=shared&_fk=1",
			PingTimeout:    5 * time.Second,
			OtelIdentifier: "go-worklog-web",
		},
		LLM: config.LLMConfig{
			Model:       llm.DefaultModel,
			HistorySize: 50,
			Language:    "Japanese",
		},
		Features: config.FeaturesConfig{
			AIDraft:    true,
			AIInsights: true,
			AIStyle:    true,
		},
	}).WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(redactedConfig(cfg.Raw())))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithWorklogService(ctx, app); err != nil {
		panic(err)
	}

	if err := seedDemoData(ctx, app); err != nil {
		panic(err)
	}

	// Register routes - these are defined in api_routes.go and web_routes.go
	RegisterAPIRoutes(app)
	RegisterWebRoutes(app)

	serverCfg := app.Config().GetServer()
	addr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	log.Printf("Starting server on http://%s\n", addr)
	app.srv.Serve(addr)

	WaitExitSignal()
}

// redactedConfig copies the config without secrets for the startup dump.
func redactedConfig(cfg *config.BaseConfig) config.BaseConfig {
	out := *cfg
	out.Auth.SigningKey = "***"
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = "***"
	}
	return out
}

func renderWithGlobals(ctx router.Context, name string, data router.ViewContext) error {
	viewData := auth.MergeTemplateData(ctx, data)
	if _, ok := viewData[csrf.DefaultTemplateHelpersKey]; !ok {
		viewData[csrf.DefaultTemplateHelpersKey] = auth.TemplateHelpersWithRouter(ctx, auth.TemplateUserKey)
	}
	return ctx.Render(name, viewData)
}

func WithHTTPServer(ctx context.Context, app *App) error {
	vcfg := router.NewSimpleViewConfig("./views").
		WithExt(".html").
		WithDebug(app.Config().GetPersistence().GetDebug()).
		WithReload(true).
		WithAssets("./public", "/css", "/js").
		WithFunctions(auth.TemplateHelpers())

	vcfg.TemplateFS = []fs.FS{
		cfs.NewCompositeFS(
			os.DirFS("./views"),
		),
	}

	engine, err := router.InitializeViewEngine(vcfg, app.GetLogger("views"))
	if err != nil {
		return err
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: false,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
			BodyLimit:         reports.MaxImageSize * 2,
		})
	})

	srv.Router().Static("/", "./public")

	srv.Router().WithLogger(app.GetLogger("router"))

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	app.SetHTTPServer(srv)

	return nil
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.config.Raw().GetPersistence()
	dsn := cfg.GetServer()
	if dsn == "" {
		dsn = "file::memory:?cache=shared&_fk=1"
	}

	db, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return err
	}

	persistence.RegisterModel((*auth.User)(nil))
	persistence.RegisterModel((*auth.PasswordReset)(nil))
	persistence.RegisterModel((*profile.OrganizationRecord)(nil))
	persistence.RegisterModel((*profile.Record)(nil))
	persistence.RegisterModel((*registry.RoleRecord)(nil))
	persistence.RegisterModel((*reports.FormatRecord)(nil))
	persistence.RegisterModel((*reports.PurposeRecord)(nil))
	persistence.RegisterModel((*reports.ReportRecord)(nil))
	persistence.RegisterModel((*reports.ImageRecord)(nil))
	persistence.RegisterModel((*activity.LogEntry)(nil))

	bunClient, err := persistence.New(cfg, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	bunClient.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := worklog.GetMigrationsFS()
	if err != nil {
		return err
	}

	bunClient.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("."),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := bunClient.ValidateDialects(ctx); err != nil {
		app.GetLogger("persistence").Warn("dialect validation failed", "error", err)
	}

	if err := bunClient.Migrate(ctx); err != nil {
		return err
	}

	if report := bunClient.Report(); report != nil && !report.IsZero() {
		app.GetLogger("persistence").Info("migrations applied", "report", report.String())
	}

	app.SetDB(bunClient.DB())
	app.SetRepository(auth.NewRepositoryManager(bunClient.DB()))

	return nil
}

func WithHTTPAuth(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()

	repo := app.repo
	if err := repo.Validate(); err != nil {
		return err
	}

	userTracker := &userTrackerAdapter{users: repo.Users()}

	userProvider := auth.NewUserProvider(userTracker)
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	authenticator := auth.NewAuthenticator(userProvider, cfg)
	authenticator.WithLogger(app.GetLogger("auth:authz"))

	app.SetAuthenticator(authenticator)

	httpAuth, err := auth.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		return err
	}

	httpAuth.WithLogger(app.GetLogger("auth:http"))

	app.SetHTTPAuth(httpAuth)

	auth.RegisterAuthRoutes(app.srv.Router().Group("/"),
		func(ac *auth.AuthController) *auth.AuthController {
			ac.Auther = httpAuth
			ac.Repo = repo
			ac.WithLogger(app.GetLogger("auth:ctrl"))
			return ac
		})

	return nil
}

func WithWorklogService(ctx context.Context, app *App) error {
	hooksLogger := app.GetLogger("hooks")
	cfg, err := worklog.NewBunConfig(app.bunDB, worklog.BunOptions{
		Logger: &loggerAdapter{app.GetLogger("worklog")},
		Hooks: types.Hooks{
			AfterRoleChange: func(_ context.Context, event types.RoleEvent) {
				hooksLogger.Info("role changed",
					"action", event.Action,
					"role", event.Role.Name,
					"level", event.Role.Level,
					"actor_id", event.ActorID)
			},
			AfterProfileChange: func(_ context.Context, event types.ProfileEvent) {
				hooksLogger.Info("profile changed",
					"action", event.Action,
					"user_id", event.UserID,
					"actor_id", event.ActorID)
			},
		},
		FormatOptions: []reports.RepositoryOption{reports.WithCache(true)},
	})
	if err != nil {
		return err
	}

	llmCfg := app.Config().GetLLM()
	if llmCfg.APIKey != "" {
		generator, err := llm.NewGenAIGenerator(ctx, llm.GenAIConfig{
			APIKey: llmCfg.APIKey,
			Model:  llmCfg.Model,
		})
		if err != nil {
			return err
		}
		cfg.Generator = generator
		app.GetLogger("llm").Info("text generator ready", "model", generator.Model())
	} else {
		app.GetLogger("llm").Warn("GEMINI_API_KEY not set, AI endpoints disabled")
	}

	cfg.FeatureGate = newFeatureToggles(app.Config().GetFeatures())
	cfg.HistorySize = llmCfg.HistorySize
	cfg.Language = llmCfg.Language

	svc := worklog.New(cfg)
	if err := svc.HealthCheck(ctx); err != nil {
		return err
	}

	app.profiles = cfg.ProfileRepository
	app.orgs = cfg.OrganizationRepository
	app.SetWorklogService(svc)

	return nil
}

// featureToggles is a static gate fed from configuration. Unknown keys are
// disabled.
type featureToggles map[string]bool

func newFeatureToggles(cfg config.FeaturesConfig) featureToggles {
	return featureToggles{
		command.FeatureAIDraft:    cfg.AIDraft,
		command.FeatureAIInsights: cfg.AIInsights,
		command.FeatureAIStyle:    cfg.AIStyle,
	}
}

func (f featureToggles) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	return f[key], nil
}

// loggerAdapter adapts glog.Logger to types.Logger
type loggerAdapter struct {
	l glog.Logger
}

func (a *loggerAdapter) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *loggerAdapter) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *loggerAdapter) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err}, args...)
	}
	a.l.Error(msg, args...)
}

// userTrackerAdapter adapts auth.Users to auth.UserTracker interface
type userTrackerAdapter struct {
	users auth.Users
}

func (u *userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return u.users.GetByIdentifier(ctx, identifier)
}

func (u *userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	return u.users.TrackAttemptedLogin(ctx, user)
}

func (u *userTrackerAdapter) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	return u.users.TrackSucccessfulLogin(ctx, user)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
