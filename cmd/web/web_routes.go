package main

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/goliatone/go-worklog/command"
	"github.com/goliatone/go-worklog/pkg/authctx"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/goliatone/go-worklog/query"
	"github.com/google/uuid"
)

const (
	loginPath  = "/auth/login"
	dateLayout = "2006-01-02"
)

type rosterRow struct {
	Profile    types.Profile
	ParentName string
}

// RegisterWebRoutes mounts all HTML web handlers
func RegisterWebRoutes(app *App) {
	cfg := app.Config().GetAuth()
	protected := app.auther.ProtectedRoute(cfg, app.auther.MakeClientRouteAuthErrorHandler(false))
	r := app.srv.Router()

	r.Get("/", renderHome(app), protected)

	purposes := r.Group("/purposes")
	purposes.Get("/", renderPurposes(app), protected)
	purposes.Post("/", handleSavePurpose(app), protected)
	purposes.Get("/:id", renderPurposeDetail(app), protected)
	purposes.Post("/:id", handleSavePurpose(app), protected)
	purposes.Post("/:id/delete", handleDeletePurpose(app), protected)

	formats := r.Group("/formats")
	formats.Get("/", renderFormats(app), protected)
	formats.Post("/", handleSaveFormat(app), protected)
	formats.Get("/:id", renderFormatDetail(app), protected)
	formats.Post("/:id", handleSaveFormat(app), protected)
	formats.Post("/:id/delete", handleDeleteFormat(app), protected)

	reports := r.Group("/reports")
	reports.Get("/", renderReports(app), protected)
	reports.Get("/new", renderReportForm(app), protected)
	reports.Post("/", handleSaveReport(app), protected)
	reports.Get("/:id", renderReportDetail(app), protected)
	reports.Get("/:id/edit", renderReportForm(app), protected)
	reports.Post("/:id", handleSaveReport(app), protected)
	reports.Post("/:id/delete", handleDeleteReport(app), protected)

	images := r.Group("/images")
	images.Get("/:id", serveImage(app), protected)
	images.Post("/:id/delete", handleDeleteImage(app), protected)

	r.Get("/profile", renderProfile(app), protected)
	r.Post("/profile", handleUpdateProfile(app), protected)
	r.Get("/tutorial", renderTutorial(app), protected)

	admin := r.Group("/admin")
	admin.Get("/", renderAdminRoster(app), protected)
	admin.Post("/users/:userId/role", handleChangeRole(app), protected)
	admin.Post("/users/:userId/admin", handleSetAdmin(app), protected)
	admin.Get("/roles", renderAdminRoles(app), protected)
	admin.Post("/roles", handleCreateRole(app), protected)
	admin.Post("/roles/:id/rename", handleRenameRole(app), protected)
	admin.Post("/roles/:id/move", handleMoveRole(app), protected)
	admin.Post("/roles/:id/delete", handleDeleteRole(app), protected)
	admin.Get("/purposes/:userId", renderAdminPurposes(app), protected)
	admin.Get("/purposes/:userId/:purposeId", renderAdminPurposeDetail(app), protected)
	admin.Get("/reports/:userId", renderAdminReports(app), protected)
	admin.Get("/reports/:userId/:reportId", renderAdminReportDetail(app), protected)

	app.GetLogger("web").Info("Web routes registered")
}

func renderHome(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, current, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		purposes, err := app.worklog.Queries().PurposeList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		recent, err := app.worklog.Queries().ReportList.Query(c.Context(), query.ReportListInput{
			Viewer: viewer,
			Limit:  5,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "index", router.ViewContext{
			"title":    "Worklog",
			"profile":  current,
			"viewer":   viewer,
			"purposes": purposes,
			"recent":   recent,
		})
	}
}

// Purpose handlers
func renderPurposes(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		purposes, err := app.worklog.Queries().PurposeList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		formats, err := app.worklog.Queries().FormatList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "purposes/index", router.ViewContext{
			"viewer":   viewer,
			"purposes": purposes,
			"formats":  formats,
		})
	}
}

func renderPurposeDetail(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, err := paramID(c, "id")
		if err != nil {
			return pageError(c, err)
		}
		purpose, err := app.worklog.Queries().PurposeDetail.Query(c.Context(), query.RecordInput{Viewer: viewer, ID: id})
		if err != nil {
			return pageError(c, err)
		}
		entries, err := app.worklog.Queries().ReportList.Query(c.Context(), query.ReportListInput{
			Viewer:    viewer,
			PurposeID: purpose.ID,
		})
		if err != nil {
			return pageError(c, err)
		}
		formats, err := app.worklog.Queries().FormatList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "purposes/detail", router.ViewContext{
			"viewer":  viewer,
			"purpose": purpose,
			"reports": entries,
			"formats": formats,
		})
	}
}

func handleSavePurpose(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, _ := optionalID(c.Param("id", ""))
		formatID, _ := optionalID(c.FormValue("format_id"))
		var saved types.Purpose
		err = app.worklog.Commands().SavePurpose.Execute(c.Context(), command.SavePurposeInput{
			Viewer:      viewer,
			ID:          id,
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			FormatID:    idPtr(formatID),
			Result:      &saved,
		})
		if err != nil {
			target := "/purposes"
			if id != uuid.Nil {
				target = fmt.Sprintf("/purposes/%s", id)
			}
			return flashError(c, target, "Failed to save folder", err)
		}
		return flashSuccess(c, fmt.Sprintf("/purposes/%s", saved.ID), "Folder saved")
	}
}

func handleDeletePurpose(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, err := paramID(c, "id")
		if err != nil {
			return flashError(c, "/purposes", "Invalid folder", err)
		}
		err = app.worklog.Commands().DeletePurpose.Execute(c.Context(), command.DeletePurposeInput{
			Viewer: viewer,
			ID:     id,
		})
		if err != nil {
			return flashError(c, fmt.Sprintf("/purposes/%s", id), "Failed to delete folder", err)
		}
		return flashSuccess(c, "/purposes", "Folder deleted")
	}
}

// Format handlers
func renderFormats(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		formats, err := app.worklog.Queries().FormatList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "formats/index", router.ViewContext{
			"viewer":  viewer,
			"formats": formats,
		})
	}
}

func renderFormatDetail(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, err := paramID(c, "id")
		if err != nil {
			return pageError(c, err)
		}
		format, err := app.worklog.Queries().FormatDetail.Query(c.Context(), query.RecordInput{Viewer: viewer, ID: id})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "formats/detail", router.ViewContext{
			"viewer": viewer,
			"format": format,
		})
	}
}

func handleSaveFormat(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, _ := optionalID(c.Param("id", ""))
		var saved types.ReportFormat
		err = app.worklog.Commands().SaveFormat.Execute(c.Context(), command.SaveFormatInput{
			Viewer:  viewer,
			ID:      id,
			Name:    c.FormValue("name"),
			Content: c.FormValue("content"),
			Result:  &saved,
		})
		if err != nil {
			return flashError(c, "/formats", "Failed to save format", err)
		}
		return flashSuccess(c, fmt.Sprintf("/formats/%s", saved.ID), "Format saved")
	}
}

func handleDeleteFormat(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, err := paramID(c, "id")
		if err != nil {
			return flashError(c, "/formats", "Invalid format", err)
		}
		err = app.worklog.Commands().DeleteFormat.Execute(c.Context(), command.DeleteFormatInput{
			Viewer: viewer,
			ID:     id,
		})
		if err != nil {
			return flashError(c, "/formats", "Failed to delete format", err)
		}
		return flashSuccess(c, "/formats", "Format deleted")
	}
}

// Report handlers
func renderReports(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		purposeID, _ := optionalID(c.Query("purpose"))
		entries, err := app.worklog.Queries().ReportList.Query(c.Context(), query.ReportListInput{
			Viewer:    viewer,
			PurposeID: purposeID,
		})
		if err != nil {
			return pageError(c, err)
		}
		purposes, err := app.worklog.Queries().PurposeList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "reports/index", router.ViewContext{
			"viewer":     viewer,
			"reports":    entries,
			"purposes":   purposes,
			"purpose_id": purposeID,
		})
	}
}

func renderReportForm(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		data := router.ViewContext{
			"viewer": viewer,
			"today":  time.Now().Format(dateLayout),
		}
		if id, _ := optionalID(c.Param("id", "")); id != uuid.Nil {
			report, err := app.worklog.Queries().ReportDetail.Query(c.Context(), query.RecordInput{Viewer: viewer, ID: id})
			if err != nil {
				return pageError(c, err)
			}
			data["report"] = report
			data["today"] = report.ReportDate.Format(dateLayout)
		}
		if purposeID, _ := optionalID(c.Query("purpose")); purposeID != uuid.Nil {
			data["purpose_id"] = purposeID
		}
		purposes, err := app.worklog.Queries().PurposeList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		formats, err := app.worklog.Queries().FormatList.Query(c.Context(), query.OwnerInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		data["purposes"] = purposes
		data["formats"] = formats
		return renderWithGlobals(c, "reports/form", data)
	}
}

func renderReportDetail(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, err := paramID(c, "id")
		if err != nil {
			return pageError(c, err)
		}
		report, err := app.worklog.Queries().ReportDetail.Query(c.Context(), query.RecordInput{Viewer: viewer, ID: id})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "reports/detail", router.ViewContext{
			"viewer": viewer,
			"report": report,
		})
	}
}

func handleSaveReport(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, _ := optionalID(c.Param("id", ""))
		back := "/reports/new"
		if id != uuid.Nil {
			back = fmt.Sprintf("/reports/%s/edit", id)
		}
		purposeID, err := optionalID(c.FormValue("purpose_id"))
		if err != nil {
			return flashError(c, back, "Invalid folder", err)
		}
		formatID, err := optionalID(c.FormValue("format_id"))
		if err != nil {
			return flashError(c, back, "Invalid format", err)
		}
		reportDate, err := parseDate(c.FormValue("report_date"))
		if err != nil {
			return flashError(c, back, "Invalid report date", err)
		}
		imageIDs, err := parseIDList(c.FormValue("image_ids"))
		if err != nil {
			return flashError(c, back, "Invalid image list", err)
		}
		var saved types.Report
		err = app.worklog.Commands().SaveReport.Execute(c.Context(), command.SaveReportInput{
			Viewer:     viewer,
			ID:         id,
			PurposeID:  purposeID,
			FormatID:   idPtr(formatID),
			Title:      c.FormValue("title"),
			Content:    c.FormValue("content"),
			ReportDate: reportDate,
			ImageIDs:   imageIDs,
			Result:     &saved,
		})
		if err != nil {
			return flashError(c, back, "Failed to save report", err)
		}
		return flashSuccess(c, fmt.Sprintf("/reports/%s", saved.ID), "Report saved")
	}
}

func handleDeleteReport(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		id, err := paramID(c, "id")
		if err != nil {
			return flashError(c, "/reports", "Invalid report", err)
		}
		err = app.worklog.Commands().DeleteReport.Execute(c.Context(), command.DeleteReportInput{
			Viewer: viewer,
			ID:     id,
		})
		if err != nil {
			return flashError(c, fmt.Sprintf("/reports/%s", id), "Failed to delete report", err)
		}
		return flashSuccess(c, "/reports", "Report deleted")
	}
}

// Image handlers
func serveImage(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return c.Status(http.StatusUnauthorized).SendString("Session required")
		}
		id, err := paramID(c, "id")
		if err != nil {
			return c.Status(http.StatusNotFound).SendString("Image not found")
		}
		image, err := app.worklog.Queries().Image.Query(c.Context(), query.RecordInput{Viewer: viewer, ID: id})
		if err != nil {
			if types.IsNotFound(err) {
				return c.Status(http.StatusNotFound).SendString("Image not found")
			}
			return c.Status(http.StatusInternalServerError).SendString("Failed to load image")
		}
		c.SetHeader("Content-Type", image.MimeType)
		c.SetHeader("Cache-Control", "private, max-age=3600")
		return c.Status(http.StatusOK).Send(image.Data)
	}
}

func handleDeleteImage(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		back := c.FormValue("return_to")
		if !strings.HasPrefix(back, "/") {
			back = "/reports"
		}
		id, err := paramID(c, "id")
		if err != nil {
			return flashError(c, back, "Invalid image", err)
		}
		err = app.worklog.Commands().DeleteImage.Execute(c.Context(), command.DeleteImageInput{
			Viewer: viewer,
			ID:     id,
		})
		if err != nil {
			return flashError(c, back, "Failed to delete image", err)
		}
		return flashSuccess(c, back, "Image deleted")
	}
}

// Profile handlers
func renderProfile(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		profileData, err := app.worklog.Queries().ProfileDetail.Query(c.Context(), query.ProfileInput{
			Viewer: viewer,
			UserID: viewer.ID,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "profile/detail", router.ViewContext{
			"viewer":  viewer,
			"profile": profileData,
		})
	}
}

func handleUpdateProfile(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		name := c.FormValue("name")
		personal := c.FormValue("personal")
		err = app.worklog.Commands().UpdateProfile.Execute(c.Context(), command.UpdateProfileInput{
			Viewer:   viewer,
			Name:     &name,
			Personal: &personal,
		})
		if err != nil {
			return flashError(c, "/profile", "Failed to update profile", err)
		}
		return flashSuccess(c, "/profile", "Profile updated")
	}
}

func renderTutorial(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, current, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "profile/tutorial", router.ViewContext{
			"viewer":  viewer,
			"profile": current,
		})
	}
}

// Admin handlers
func renderAdminRoster(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		if !canAdminister(viewer) {
			return deny(c)
		}
		visible, err := app.worklog.Queries().VisibleUsers.Query(c.Context(), query.VisibleUsersInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		data := router.ViewContext{
			"viewer": viewer,
			"users":  buildRoster(visible),
		}
		if viewer.IsSuperuser {
			roles, err := app.worklog.Queries().RoleList.Query(c.Context(), query.RoleListInput{Viewer: viewer})
			if err != nil {
				return pageError(c, err)
			}
			data["roles"] = roles
		}
		return renderWithGlobals(c, "admin/index", data)
	}
}

func handleChangeRole(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		userID, err := paramID(c, "userId")
		if err != nil {
			return flashError(c, "/admin", "Invalid user", err)
		}
		roleID, err := optionalID(c.FormValue("role_id"))
		if err != nil {
			return flashError(c, "/admin", "Invalid role", err)
		}
		var result types.MutationResult
		err = app.worklog.Commands().ChangeRole.Execute(c.Context(), command.ChangeRoleInput{
			Viewer: viewer,
			UserID: userID,
			RoleID: roleID,
			Result: &result,
		})
		return flashOutcome(c, "/admin", "Role", result.Outcome, err)
	}
}

func handleSetAdmin(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		userID, err := paramID(c, "userId")
		if err != nil {
			return flashError(c, "/admin", "Invalid user", err)
		}
		isAdmin, _ := strconv.ParseBool(c.FormValue("is_admin"))
		var result types.MutationResult
		err = app.worklog.Commands().SetAdminFlag.Execute(c.Context(), command.SetAdminFlagInput{
			Viewer:  viewer,
			UserID:  userID,
			IsAdmin: isAdmin,
			Result:  &result,
		})
		return flashOutcome(c, "/admin", "Admin flag", result.Outcome, err)
	}
}

func renderAdminRoles(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		if !viewer.IsSuperuser {
			return deny(c)
		}
		roles, err := app.worklog.Queries().RoleList.Query(c.Context(), query.RoleListInput{Viewer: viewer})
		if err != nil {
			return pageError(c, err)
		}
		feed, err := app.worklog.Queries().ActivityFeed.Query(c.Context(), query.ActivityFeedInput{
			Viewer: viewer,
			Limit:  25,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "admin/roles", router.ViewContext{
			"viewer":     viewer,
			"roles":      roles,
			"activities": feed,
		})
	}
}

func handleCreateRole(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		var result types.MutationResult
		err = app.worklog.Commands().CreateRole.Execute(c.Context(), command.CreateRoleInput{
			Viewer: viewer,
			Name:   c.FormValue("name"),
			Result: &result,
		})
		return flashOutcome(c, "/admin/roles", "Role", result.Outcome, err)
	}
}

func handleRenameRole(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		roleID, err := paramID(c, "id")
		if err != nil {
			return flashError(c, "/admin/roles", "Invalid role", err)
		}
		var result types.MutationResult
		err = app.worklog.Commands().RenameRole.Execute(c.Context(), command.RenameRoleInput{
			Viewer: viewer,
			RoleID: roleID,
			Name:   c.FormValue("name"),
			Result: &result,
		})
		return flashOutcome(c, "/admin/roles", "Role", result.Outcome, err)
	}
}

func handleMoveRole(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		roleID, err := paramID(c, "id")
		if err != nil {
			return flashError(c, "/admin/roles", "Invalid role", err)
		}
		var result types.MutationResult
		err = app.worklog.Commands().MoveRole.Execute(c.Context(), command.MoveRoleInput{
			Viewer:    viewer,
			RoleID:    roleID,
			Direction: types.Direction(c.FormValue("direction")),
			Result:    &result,
		})
		return flashOutcome(c, "/admin/roles", "Role order", result.Outcome, err)
	}
}

func handleDeleteRole(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return pageError(c, err)
		}
		roleID, err := paramID(c, "id")
		if err != nil {
			return flashError(c, "/admin/roles", "Invalid role", err)
		}
		var result types.MutationResult
		err = app.worklog.Commands().DeleteRole.Execute(c.Context(), command.DeleteRoleInput{
			Viewer: viewer,
			RoleID: roleID,
			Result: &result,
		})
		if stderrors.Is(err, types.ErrRoleInUse) {
			return flashError(c, "/admin/roles", "Role is still assigned to users", err)
		}
		return flashOutcome(c, "/admin/roles", "Role", result.Outcome, err)
	}
}

func renderAdminPurposes(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, subject, err := adminSubject(c, app)
		if err != nil {
			return pageError(c, err)
		}
		purposes, err := app.worklog.Queries().PurposeList.Query(c.Context(), query.OwnerInput{
			Viewer: viewer,
			UserID: subject.ID,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "admin/purposes", router.ViewContext{
			"viewer":   viewer,
			"subject":  subject,
			"purposes": purposes,
		})
	}
}

func renderAdminPurposeDetail(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, subject, err := adminSubject(c, app)
		if err != nil {
			return pageError(c, err)
		}
		purposeID, err := paramID(c, "purposeId")
		if err != nil {
			return pageError(c, err)
		}
		purpose, err := app.worklog.Queries().PurposeDetail.Query(c.Context(), query.RecordInput{
			Viewer: viewer,
			UserID: subject.ID,
			ID:     purposeID,
		})
		if err != nil {
			return pageError(c, err)
		}
		entries, err := app.worklog.Queries().ReportList.Query(c.Context(), query.ReportListInput{
			Viewer:    viewer,
			UserID:    subject.ID,
			PurposeID: purpose.ID,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "admin/purpose_detail", router.ViewContext{
			"viewer":      viewer,
			"subject":     subject,
			"purpose":     purpose,
			"reports":     entries,
			"report_base": adminReportBase(subject.ID),
		})
	}
}

func renderAdminReports(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, subject, err := adminSubject(c, app)
		if err != nil {
			return pageError(c, err)
		}
		entries, err := app.worklog.Queries().ReportList.Query(c.Context(), query.ReportListInput{
			Viewer: viewer,
			UserID: subject.ID,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "admin/reports", router.ViewContext{
			"viewer":      viewer,
			"subject":     subject,
			"reports":     entries,
			"report_base": adminReportBase(subject.ID),
		})
	}
}

func renderAdminReportDetail(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, subject, err := adminSubject(c, app)
		if err != nil {
			return pageError(c, err)
		}
		reportID, err := paramID(c, "reportId")
		if err != nil {
			return pageError(c, err)
		}
		report, err := app.worklog.Queries().ReportDetail.Query(c.Context(), query.RecordInput{
			Viewer: viewer,
			UserID: subject.ID,
			ID:     reportID,
		})
		if err != nil {
			return pageError(c, err)
		}
		return renderWithGlobals(c, "admin/report_detail", router.ViewContext{
			"viewer":  viewer,
			"subject": subject,
			"report":  report,
		})
	}
}

// adminSubject resolves the viewer and the browsed user of the admin pages.
// The profile query applies the visibility rules.
func adminSubject(c router.Context, app *App) (types.Viewer, *types.Profile, error) {
	viewer, _, err := viewerFromSession(c, app)
	if err != nil {
		return types.Viewer{}, nil, err
	}
	if !canAdminister(viewer) {
		return types.Viewer{}, nil, types.ErrForbidden
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return types.Viewer{}, nil, err
	}
	subject, err := app.worklog.Queries().ProfileDetail.Query(c.Context(), query.ProfileInput{
		Viewer: viewer,
		UserID: userID,
	})
	if err != nil {
		return types.Viewer{}, nil, err
	}
	return viewer, subject, nil
}

// viewerFromSession resolves the signed-in viewer. It prefers the actor
// context set by go-auth and falls back to the session claims.
func viewerFromSession(c router.Context, app *App) (types.Viewer, *types.Profile, error) {
	viewer, current, err := authctx.ResolveViewerFromRouter(c, app.profiles)
	if err == nil {
		return viewer, current, nil
	}
	session, sessionErr := auth.GetRouterSession(c, app.Config().GetAuth().GetContextKey())
	if sessionErr != nil {
		return types.Viewer{}, nil, err
	}
	userID, parseErr := uuid.Parse(session.GetUserID())
	if parseErr != nil {
		return types.Viewer{}, nil, err
	}
	current, err = app.profiles.GetProfile(c.Context(), userID)
	if err != nil {
		return types.Viewer{}, nil, err
	}
	return types.ViewerFromProfile(current), current, nil
}

func adminReportBase(userID uuid.UUID) string {
	return fmt.Sprintf("/admin/reports/%s/", userID)
}

func canAdminister(viewer types.Viewer) bool {
	return viewer.IsAdmin || viewer.IsSuperuser
}

func buildRoster(profiles []types.Profile) []rosterRow {
	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName()
	}
	rows := make([]rosterRow, 0, len(profiles))
	for _, p := range profiles {
		row := rosterRow{Profile: p}
		if p.ParentID != nil {
			row.ParentName = names[*p.ParentID]
		}
		rows = append(rows, row)
	}
	return rows
}

// pageError maps service errors onto page responses: a missing session goes
// to the login page, forbidden redirects home and missing records render 404.
func pageError(c router.Context, err error) error {
	switch {
	case isAuthError(err):
		return flash.Redirect(c, loginPath, router.ViewContext{
			"error":         true,
			"error_message": "Please sign in",
		})
	case types.IsForbidden(err):
		return deny(c)
	case types.IsNotFound(err):
		return renderWithGlobals(c.Status(http.StatusNotFound), "errors/404", router.ViewContext{
			"message": err.Error(),
		})
	default:
		var invalid *types.ValidationError
		if stderrors.As(err, &invalid) {
			return renderWithGlobals(c.Status(http.StatusBadRequest), "errors/404", router.ViewContext{
				"message": err.Error(),
			})
		}
		return renderWithGlobals(c.Status(http.StatusInternalServerError), "errors/500", router.ViewContext{
			"message": err.Error(),
		})
	}
}

func isAuthError(err error) bool {
	if stderrors.Is(err, types.ErrViewerRequired) {
		return true
	}
	var rich *errors.Error
	return errors.As(err, &rich) && rich.Category == errors.CategoryAuth
}

func deny(c router.Context) error {
	return flash.Redirect(c, "/", router.ViewContext{
		"error":         true,
		"error_message": "You do not have access to that page",
	})
}

func flashError(c router.Context, target, message string, err error) error {
	return flash.Redirect(c, target, router.ViewContext{
		"error":         true,
		"error_message": fmt.Sprintf("%s: %v", message, err),
	})
}

func flashSuccess(c router.Context, target, message string) error {
	return flash.Redirect(c, target, router.ViewContext{
		"success":         true,
		"success_message": message,
	})
}

func flashOutcome(c router.Context, target, subject string, outcome types.Outcome, err error) error {
	if outcome == "" {
		outcome = types.OutcomeFromError(err)
	}
	switch outcome {
	case types.OutcomeApplied:
		return flashSuccess(c, target, subject+" updated")
	case types.OutcomeUnchanged:
		return flashSuccess(c, target, subject+" unchanged")
	case types.OutcomeForbidden:
		return flashError(c, target, subject+" not updated", types.ErrForbidden)
	default:
		return flashError(c, target, subject+" not updated", err)
	}
}

func paramID(c router.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name, ""))
	if err != nil {
		return uuid.Nil, types.Invalid(name, "must be a valid id")
	}
	return id, nil
}

func optionalID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func idPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

func parseIDList(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := optionalID(part)
		if err != nil {
			return nil, err
		}
		if id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
