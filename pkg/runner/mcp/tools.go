package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/timeutil"
)

// tools holds the tool handlers. Engine failures come back as tool
// errors, never as Go errors.
type tools struct {
	svc *app.Service
	now func() time.Time
}

func categoryKeys() []string {
	keys := category.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func withCategory() mcp.ToolOption {
	return mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category key, such as health or finance."),
		mcp.Enum(categoryKeys()...),
	)
}

func registerTools(srv *server.MCPServer, t *tools) {
	srv.AddTool(mcp.NewTool(
		"list_categories",
		mcp.WithDescription("List the fixed categories."),
	), t.listCategories)

	srv.AddTool(mcp.NewTool(
		"add_log",
		mcp.WithDescription("File a note under a category."),
		withCategory(),
		mcp.WithString("activity",
			mcp.Required(),
			mcp.Description("What happened."),
		),
		mcp.WithString("when",
			mcp.Description("Optional RFC3339 timestamp; defaults to now."),
		),
	), t.addLog)

	srv.AddTool(mcp.NewTool(
		"list_logs",
		mcp.WithDescription("List active notes, for one category or all of them."),
		mcp.WithString("category",
			mcp.Description("Optional category key, label or alias."),
		),
	), t.listLogs)

	srv.AddTool(mcp.NewTool(
		"delete_log",
		mcp.WithDescription("Delete a note. Deleting a missing note reports deleted=false."),
		withCategory(),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier.")),
	), t.deleteLog)

	srv.AddTool(mcp.NewTool(
		"archive_now",
		mcp.WithDescription("Snapshot the active notes without clearing them."),
	), t.archiveNow)

	srv.AddTool(mcp.NewTool(
		"list_archives",
		mcp.WithDescription("List archives, newest first."),
	), t.listArchives)

	srv.AddTool(mcp.NewTool(
		"restore_archive",
		mcp.WithDescription("Replace the active notes with a copy of an archive."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Archive identifier.")),
	), t.restoreArchive)

	srv.AddTool(mcp.NewTool(
		"add_alert",
		mcp.WithDescription("Add a task with a deadline."),
		withCategory(),
		mcp.WithString("task", mcp.Required(), mcp.Description("What is due.")),
		mcp.WithString("deadline",
			mcp.Required(),
			mcp.Description("RFC3339 deadline."),
		),
	), t.addAlert)

	srv.AddTool(mcp.NewTool(
		"complete_alert",
		mcp.WithDescription("Mark an alert done."),
		withCategory(),
		mcp.WithString("id", mcp.Required(), mcp.Description("Alert identifier.")),
	), t.completeAlert)

	srv.AddTool(mcp.NewTool(
		"list_alerts",
		mcp.WithDescription("List alerts, or only those due within a window such as 2d."),
		mcp.WithString("within",
			mcp.Description("Optional window, example: 36h, 2d or 1w2d."),
		),
	), t.listAlerts)

	srv.AddTool(mcp.NewTool(
		"overdue",
		mcp.WithDescription("List categories that have an overdue open alert."),
	), t.overdue)
}

func (t *tools) category(request mcp.CallToolRequest) (category.Key, error) {
	raw, err := request.RequireString("category")
	if err != nil {
		return "", err
	}
	return category.Parse(raw)
}

func (t *tools) listCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type view struct {
		Key   category.Key `json:"key"`
		Label string       `json:"label"`
	}
	cats := t.svc.Categories()
	out := make([]view, len(cats))
	for i, c := range cats {
		out[i] = view{Key: c.Key, Label: c.Label}
	}
	return toJSONResult(out)
}

func (t *tools) addLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := t.category(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	activity, err := request.RequireString("activity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := t.svc.AddLog(cat, activity, request.GetString("when", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if e == nil {
		return mcp.NewToolResultError("activity must not be blank and when must be RFC3339"), nil
	}
	return toJSONResult(e)
}

func (t *tools) listLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := strings.TrimSpace(request.GetString("category", ""))
	if raw == "" {
		return toJSONResult(t.svc.Logs())
	}
	cat, err := category.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := t.svc.LogsFor(cat)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]any{
		"category": cat,
		"count":    len(entries),
		"entries":  entries,
	})
}

func (t *tools) deleteLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := t.category(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := t.svc.DeleteLog(cat, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]bool{"deleted": ok})
}

func (t *tools) archiveNow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	it, err := t.svc.ArchiveNow()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(it)
}

func (t *tools) listArchives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type summary struct {
		ID         string `json:"id"`
		Timestamp  string `json:"timestamp"`
		Categories int    `json:"categories"`
		Entries    int    `json:"entries"`
	}
	list := t.svc.Archives()
	out := make([]summary, len(list))
	for i, it := range list {
		cats, entries := it.Summary()
		out[i] = summary{ID: it.ID, Timestamp: it.Timestamp, Categories: cats, Entries: entries}
	}
	return toJSONResult(out)
}

func (t *tools) restoreArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logs, err := t.svc.RestoreArchive(id)
	if errors.Is(err, app.ErrArchiveNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no archive %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(logs)
}

func (t *tools) addAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := t.category(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deadline, err := request.RequireString("deadline")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := t.svc.AddAlert(cat, task, deadline)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if a == nil {
		return mcp.NewToolResultError("task must not be blank and deadline must be RFC3339"), nil
	}
	return toJSONResult(a)
}

func (t *tools) completeAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := t.category(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := t.svc.CompleteAlert(cat, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]bool{"completed": ok})
}

func (t *tools) listAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	within := strings.TrimSpace(request.GetString("within", ""))
	if within == "" {
		return toJSONResult(t.svc.Alerts())
	}
	window, label, err := timeutil.ParseWindow(within, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type upcoming struct {
		Category category.Key `json:"category"`
		ID       string       `json:"id"`
		Task     string       `json:"task"`
		Deadline string       `json:"deadline"`
	}
	list := t.svc.UpcomingAlerts(t.now(), window)
	out := make([]upcoming, len(list))
	for i, u := range list {
		out[i] = upcoming{Category: u.Category, ID: u.Alert.ID, Task: u.Alert.Task, Deadline: u.Alert.Deadline}
	}
	return toJSONResult(map[string]any{
		"within": label,
		"count":  len(out),
		"alerts": out,
	})
}

func (t *tools) overdue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toJSONResult(map[string]any{
		"categories": t.svc.OverdueCategories(t.now()),
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
