// Package mcpserver exposes the reminder popup's operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/tab-reminder/internal/host"
	"github.com/notexe/tab-reminder/internal/imagesearch"
	"github.com/notexe/tab-reminder/internal/reminder"
)

const (
	serverName    = "tab-reminder"
	serverVersion = "1.0.0"
)

// Scheduler is what the tools need from reminder.Scheduler.
type Scheduler interface {
	Schedule(label string) reminder.Reminder
	Pending() []host.Alarm
	OnNotificationAction(notificationID string, buttonIndex int)
}

// TabLookup resolves the active tab's URL.
type TabLookup interface {
	CurrentTabURL(ctx context.Context) (string, error)
}

// ImageSearcher finds a thumbnail for a term.
type ImageSearcher interface {
	Search(ctx context.Context, term string) (*imagesearch.Image, error)
}

// Server is the MCP server for the reminder popup.
type Server struct {
	mcpServer *server.MCPServer
	scheduler Scheduler
	tabs      TabLookup
	search    ImageSearcher
}

// NewServer creates the server. search may be nil when no credentials are
// configured; search_image then reports an error.
func NewServer(scheduler Scheduler, tabs TabLookup, search ImageSearcher) *Server {
	s := &Server{
		scheduler: scheduler,
		tabs:      tabs,
		search:    search,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("schedule_reminder",
			mcp.WithDescription("Schedule a one-shot reminder that shows a notification shortly after"),
			mcp.WithString("label", mcp.Required(), mcp.Description("Reminder text, also used as its id")),
		),
		s.handleScheduleReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_alarms",
			mcp.WithDescription("List reminders whose alarm has not fired yet"),
		),
		s.handleListAlarms,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("dismiss_notification",
			mcp.WithDescription("Press a button on a reminder notification (0 = Dismiss)"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Notification id (the reminder label)")),
			mcp.WithNumber("button", mcp.Description("Button index (default: 0)")),
		),
		s.handleDismissNotification,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("current_tab_url",
			mcp.WithDescription("Get the URL of the active browser tab"),
		),
		s.handleCurrentTabURL,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("search_image",
			mcp.WithDescription("Find a thumbnail image for a search term"),
			mcp.WithString("term", mcp.Required(), mcp.Description("Search term")),
		),
		s.handleSearchImage,
	)
}

func (s *Server) handleScheduleReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label := req.GetString("label", "")
	if label == "" {
		return mcp.NewToolResultError("label is required"), nil
	}

	r := s.scheduler.Schedule(label)

	output, _ := json.MarshalIndent(r, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListAlarms(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alarms := s.scheduler.Pending()
	if len(alarms) == 0 {
		return mcp.NewToolResultText("No pending reminders."), nil
	}

	output, _ := json.MarshalIndent(alarms, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleDismissNotification(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	button := req.GetFloat("button", reminder.DismissButton)
	if button < 0 || button != math.Trunc(button) {
		return mcp.NewToolResultError("button must be a non-negative whole number"), nil
	}

	s.scheduler.OnNotificationAction(id, int(button))

	return mcp.NewToolResultText(fmt.Sprintf("Button %d pressed on notification %q.", int(button), id)), nil
}

func (s *Server) handleCurrentTabURL(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := s.tabs.CurrentTabURL(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read active tab: %v", err)), nil
	}
	return mcp.NewToolResultText(url), nil
}

func (s *Server) handleSearchImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := req.GetString("term", "")
	if term == "" {
		return mcp.NewToolResultError("term is required"), nil
	}
	if s.search == nil {
		return mcp.NewToolResultError("image search is not configured (set GOOGLE_API_KEY and GOOGLE_CSE_ID)"), nil
	}

	img, err := s.search.Search(ctx, term)
	if err != nil {
		return mcp.NewToolResultError(imagesearch.Reason(err)), nil
	}

	output, _ := json.MarshalIndent(img, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
