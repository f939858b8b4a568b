package axlive

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/axlive/kit"
)

// RegisterMCP registers the axlive tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	ep := e.endpoints()
	noArgs := kit.InputSchema(map[string]any{})

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axlive_next",
		Description: "Move the screen reader cursor to the next interesting node and return it.",
		InputSchema: noArgs,
	}, ep.navigate, fixed(&navigateReq{Direction: "next"}))

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axlive_previous",
		Description: "Move the screen reader cursor to the previous interesting node and return it.",
		InputSchema: noArgs,
	}, ep.navigate, fixed(&navigateReq{Direction: "previous"}))

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axlive_cursor",
		Description: "Describe the node under the screen reader cursor.",
		InputSchema: noArgs,
	}, ep.cursor, fixed(nil))

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axlive_focus",
		Description: "Give a page's window focus. Live regions in unfocused windows queue instead of interrupting.",
		InputSchema: kit.InputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID from the configuration"},
		}, "page_id"),
	}, ep.focus, kit.DecodeArgs[focusReq]())

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axlive_announcements",
		Description: "List recent speech (live-region announcements and navigation), newest first.",
		InputSchema: kit.InputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum entries (default 50, max 500)"},
		}),
	}, ep.announcements, kit.DecodeArgs[announcementsReq]())
}

func fixed(req any) func(*mcp.CallToolRequest) (any, error) {
	return func(*mcp.CallToolRequest) (any, error) { return req, nil }
}
