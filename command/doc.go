// Package command exposes go-command compatible handlers for the worklog
// mutations: role and admin-flag changes, role ordering, profile edits, the
// purpose/format/report/image CRUD and the AI-assisted workflows. Every
// handler takes the viewer explicitly and is wired by the service layer.
package command
