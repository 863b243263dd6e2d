package main

import (
	"context"
	"fmt"

	auth "github.com/goliatone/go-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-worklog/command"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/query"
	"github.com/google/uuid"
)

var demoOrganizationID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type seedAccount struct {
	Key         string
	Email       string
	Username    string
	FirstName   string
	LastName    string
	Password    string
	Parent      string
	Role        string
	IsAdmin     bool
	IsSuperuser bool
}

var demoAccounts = []seedAccount{
	{
		Key:         "root",
		Email:       "hana.mori@example.com",
		Username:    "hana.mori",
		FirstName:   "Hana",
		LastName:    "Mori",
		Password:    "ChangeM3!",
		Role:        "Director",
		IsAdmin:     true,
		IsSuperuser: true,
	},
	{
		Key:       "lead",
		Email:     "kenji.sato@example.com",
		Username:  "kenji.sato",
		FirstName: "Kenji",
		LastName:  "Sato",
		Password:  "ChangeM3!",
		Parent:    "root",
		Role:      "Lead",
		IsAdmin:   true,
	},
	{
		Key:       "member",
		Email:     "aya.kobayashi@example.com",
		Username:  "aya.kobayashi",
		FirstName: "Aya",
		LastName:  "Kobayashi",
		Password:  "ChangeM3!",
		Parent:    "lead",
		Role:      "Member",
	},
	{
		Key:       "peer",
		Email:     "sora.ito@example.com",
		Username:  "sora.ito",
		FirstName: "Sora",
		LastName:  "Ito",
		Password:  "ChangeM3!",
		Parent:    "root",
		Role:      "Member",
	},
}

// demoRoles are created junior first so the last one ends up most senior.
var demoRoles = []string{"Member", "Lead", "Director"}

const demoFormat = `## Today
-

## Tomorrow
-

## Notes
`

// seedDemoData creates the demo organization on first start. Accounts that
// already exist are left untouched.
func seedDemoData(ctx context.Context, app *App) error {
	if app.repo == nil || app.worklog == nil {
		return nil
	}

	if _, err := app.orgs.UpsertOrganization(ctx, types.Organization{
		ID:   demoOrganizationID,
		Name: "Demo Works",
	}); err != nil {
		return err
	}

	ids := make(map[string]uuid.UUID, len(demoAccounts))
	created := make(map[string]bool, len(demoAccounts))
	for _, acct := range demoAccounts {
		id, isNew, err := ensureAuthUser(ctx, app, acct)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", acct.Email, err)
		}
		ids[acct.Key] = id
		created[acct.Key] = isNew
	}

	for _, acct := range demoAccounts {
		if !created[acct.Key] {
			continue
		}
		var parent *uuid.UUID
		if acct.Parent != "" {
			id := ids[acct.Parent]
			parent = &id
		}
		if _, err := app.profiles.UpsertProfile(ctx, types.Profile{
			ID:             ids[acct.Key],
			Email:          acct.Email,
			Name:           acct.FirstName + " " + acct.LastName,
			IsAdmin:        acct.IsAdmin,
			IsSuperuser:    acct.IsSuperuser,
			OrganizationID: demoOrganizationID,
			ParentID:       parent,
		}); err != nil {
			return fmt.Errorf("seed profile %s: %w", acct.Email, err)
		}
	}

	root, err := app.profiles.GetProfile(ctx, ids["root"])
	if err != nil {
		return err
	}
	rootViewer := types.ViewerFromProfile(root)

	roles, err := seedRoles(ctx, app, rootViewer)
	if err != nil {
		return err
	}

	for _, acct := range demoAccounts {
		if !created[acct.Key] {
			continue
		}
		roleID, ok := roles[acct.Role]
		if ok {
			var result types.MutationResult
			if err := app.worklog.Commands().ChangeRole.Execute(ctx, command.ChangeRoleInput{
				Viewer: rootViewer,
				UserID: ids[acct.Key],
				RoleID: roleID,
				Result: &result,
			}); err != nil {
				return fmt.Errorf("seed role for %s: %w", acct.Email, err)
			}
		}
		owner, err := app.profiles.GetProfile(ctx, ids[acct.Key])
		if err != nil {
			return err
		}
		if err := seedWorkspace(ctx, app, types.ViewerFromProfile(owner)); err != nil {
			return fmt.Errorf("seed workspace for %s: %w", acct.Email, err)
		}
	}

	app.GetLogger("seed").Info("demo data ready", "organization", demoOrganizationID, "accounts", len(demoAccounts))
	return nil
}

func ensureAuthUser(ctx context.Context, app *App, acct seedAccount) (uuid.UUID, bool, error) {
	usersRepo := app.repo.Users()
	record, err := usersRepo.GetByIdentifier(ctx, acct.Email)
	if err != nil && !repository.IsRecordNotFound(err) {
		return uuid.Nil, false, err
	}
	if err == nil && record != nil {
		return record.ID, false, nil
	}

	passwordHash, err := auth.HashPassword(acct.Password)
	if err != nil {
		return uuid.Nil, false, err
	}

	// Worklog privileges come from the profile flags, not the auth role.
	user := &auth.User{
		ID:                 uuid.New(),
		Role:               auth.RoleAdmin,
		Status:             auth.UserStatusActive,
		FirstName:          acct.FirstName,
		LastName:           acct.LastName,
		Username:           acct.Username,
		Email:              acct.Email,
		PasswordHash:       passwordHash,
		EmailValidated:     true,
		ExternalID:         acct.Email,
		ExternalIDProvider: "seed",
	}
	created, err := usersRepo.Create(ctx, user)
	if err != nil {
		return uuid.Nil, false, err
	}
	return created.ID, true, nil
}

func seedRoles(ctx context.Context, app *App, viewer types.Viewer) (map[string]uuid.UUID, error) {
	existing, err := app.worklog.Queries().RoleList.Query(ctx, query.RoleListInput{Viewer: viewer})
	if err != nil {
		return nil, err
	}
	out := make(map[string]uuid.UUID, len(demoRoles))
	for _, role := range existing {
		out[role.Name] = role.ID
	}
	for _, name := range demoRoles {
		if _, ok := out[name]; ok {
			continue
		}
		var result types.MutationResult
		if err := app.worklog.Commands().CreateRole.Execute(ctx, command.CreateRoleInput{
			Viewer: viewer,
			Name:   name,
			Result: &result,
		}); err != nil {
			return nil, fmt.Errorf("seed role %s: %w", name, err)
		}
		out[name] = result.Role.ID
	}
	return out, nil
}

func seedWorkspace(ctx context.Context, app *App, owner types.Viewer) error {
	var format types.ReportFormat
	if err := app.worklog.Commands().SaveFormat.Execute(ctx, command.SaveFormatInput{
		Viewer:  owner,
		Name:    "Daily",
		Content: demoFormat,
		Result:  &format,
	}); err != nil {
		return err
	}
	return app.worklog.Commands().SavePurpose.Execute(ctx, command.SavePurposeInput{
		Viewer:      owner,
		Name:        "Daily report",
		Description: "Day to day progress notes",
		FormatID:    &format.ID,
	})
}
