package main

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-worklog/command"
	"github.com/goliatone/go-worklog/pkg/types"
)

type draftRequest struct {
	PurposeID      string          `json:"purposeId"`
	FormatID       string          `json:"formatId"`
	CurrentContent string          `json:"currentContent"`
	ImageIDs       []string        `json:"imageIds"`
	Images         []inlineImageIn `json:"images"`
}

type inlineImageIn struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type insightsRequest struct {
	PurposeID string `json:"purposeId"`
	Content   string `json:"content"`
}

type styleRequest struct {
	Content string `json:"content"`
	Save    *bool  `json:"save"`
}

type imageUploadRequest struct {
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	Data      string `json:"data"`
	PurposeID string `json:"purposeId"`
}

// RegisterAPIRoutes mounts the JSON endpoints used by the report editor.
func RegisterAPIRoutes(app *App) {
	cfg := app.Config().GetAuth()
	protected := app.auther.ProtectedRoute(cfg, app.auther.MakeClientRouteAuthErrorHandler(true))

	api := app.srv.Router().Group("/api")
	api.Post("/llm", handleGenerateDraft(app), protected)
	api.Post("/insights", handleExtractInsights(app), protected)
	api.Post("/tutorial", handleAnalyzeStyle(app), protected)
	api.Post("/images", handleUploadImage(app), protected)

	app.GetLogger("api").Info("API routes registered", "prefix", "/api")
}

func handleGenerateDraft(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return apiError(c, app, err)
		}
		var payload draftRequest
		if err := c.Bind(&payload); err != nil {
			return apiError(c, app, types.Invalid("body", "malformed JSON"))
		}
		purposeID, err := optionalID(payload.PurposeID)
		if err != nil {
			return apiError(c, app, types.Invalid("purposeId", "must be a valid id"))
		}
		formatID, err := optionalID(payload.FormatID)
		if err != nil {
			return apiError(c, app, types.Invalid("formatId", "must be a valid id"))
		}
		imageIDs, err := parseIDList(strings.Join(payload.ImageIDs, ","))
		if err != nil {
			return apiError(c, app, types.Invalid("imageIds", "must be valid ids"))
		}
		inline := make([]types.InlineImage, 0, len(payload.Images))
		for _, img := range payload.Images {
			data, err := command.DecodeBase64Payload(img.Data)
			if err != nil {
				return apiError(c, app, err)
			}
			inline = append(inline, types.InlineImage{MimeType: img.MimeType, Data: data})
		}

		var content string
		err = app.worklog.Commands().GenerateReport.Execute(c.Context(), command.GenerateReportInput{
			Viewer:         viewer,
			PurposeID:      purposeID,
			FormatID:       idPtr(formatID),
			CurrentContent: payload.CurrentContent,
			ImageIDs:       imageIDs,
			Images:         inline,
			Result:         &content,
		})
		if err != nil {
			return apiError(c, app, err)
		}
		return c.JSON(http.StatusOK, router.ViewContext{"content": content})
	}
}

func handleExtractInsights(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return apiError(c, app, err)
		}
		var payload insightsRequest
		if err := c.Bind(&payload); err != nil {
			return apiError(c, app, types.Invalid("body", "malformed JSON"))
		}
		purposeID, err := optionalID(payload.PurposeID)
		if err != nil {
			return apiError(c, app, types.Invalid("purposeId", "must be a valid id"))
		}
		var insights string
		err = app.worklog.Commands().ExtractInsights.Execute(c.Context(), command.ExtractInsightsInput{
			Viewer:    viewer,
			PurposeID: purposeID,
			Content:   payload.Content,
			Result:    &insights,
		})
		if err != nil {
			return apiError(c, app, err)
		}
		return c.JSON(http.StatusOK, router.ViewContext{"insights": insights})
	}
}

func handleAnalyzeStyle(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return apiError(c, app, err)
		}
		var payload styleRequest
		if err := c.Bind(&payload); err != nil {
			return apiError(c, app, types.Invalid("body", "malformed JSON"))
		}
		save := true
		if payload.Save != nil {
			save = *payload.Save
		}
		var personal string
		err = app.worklog.Commands().AnalyzeStyle.Execute(c.Context(), command.AnalyzeStyleInput{
			Viewer:  viewer,
			Content: payload.Content,
			Save:    save,
			Result:  &personal,
		})
		if err != nil {
			return apiError(c, app, err)
		}
		return c.JSON(http.StatusOK, router.ViewContext{"personal": personal, "saved": save})
	}
}

func handleUploadImage(app *App) router.HandlerFunc {
	return func(c router.Context) error {
		viewer, _, err := viewerFromSession(c, app)
		if err != nil {
			return apiError(c, app, err)
		}
		var payload imageUploadRequest
		if err := c.Bind(&payload); err != nil {
			return apiError(c, app, types.Invalid("body", "malformed JSON"))
		}
		purposeID, err := optionalID(payload.PurposeID)
		if err != nil {
			return apiError(c, app, types.Invalid("purposeId", "must be a valid id"))
		}
		var image types.Image
		err = app.worklog.Commands().UploadImage.Execute(c.Context(), command.UploadImageInput{
			Viewer:    viewer,
			FileName:  payload.FileName,
			MimeType:  payload.MimeType,
			Base64:    payload.Data,
			PurposeID: idPtr(purposeID),
			Result:    &image,
		})
		if err != nil {
			return apiError(c, app, err)
		}
		return c.JSON(http.StatusCreated, router.ViewContext{
			"id":       image.ID,
			"fileName": image.FileName,
			"mimeType": image.MimeType,
			"size":     image.Size,
			"url":      "/images/" + image.ID.String(),
		})
	}
}

// apiError renders the categorized error as JSON. Internal errors are logged
// and their message is not echoed back.
func apiError(c router.Context, app *App, err error) error {
	var rich *errors.Error
	if !errors.As(types.Categorize(err), &rich) {
		return c.JSON(http.StatusInternalServerError, router.ViewContext{"error": "internal error"})
	}
	status := rich.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		app.GetLogger("api").Error("request failed", "error", err)
	}
	return c.JSON(status, router.ViewContext{
		"error":     rich.Message,
		"text_code": rich.TextCode,
	})
}
