package worklog

import "github.com/goliatone/go-worklog/service"

// Re-export the service package entry point so consumers can do
// `worklog.New(...)` without importing internal wiring helpers.
type (
	Service    = service.Service
	Config     = service.Config
	Commands   = service.Commands
	Queries    = service.Queries
	BunOptions = service.BunOptions
)

// New constructs the go-worklog runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}

// NewBunConfig builds a Config backed by Bun repositories.
var NewBunConfig = service.NewBunConfig
