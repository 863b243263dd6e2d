package migrations

import (
	worklog "github.com/goliatone/go-worklog"
)

func init() {
	fsys, err := worklog.GetMigrationsFS()
	if err != nil {
		return
	}
	Register(fsys)
}
