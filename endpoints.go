package axlive

import (
	"context"
	"fmt"

	"github.com/hazyhaar/axlive/kit"
)

type navigateReq struct {
	Direction string `json:"direction"` // next | previous
}

type focusReq struct {
	PageID string `json:"page_id"`
}

type announcementsReq struct {
	Limit int `json:"limit"`
}

// endpoints are the operations shared by the HTTP and MCP surfaces.
type endpoints struct {
	navigate      kit.Endpoint
	cursor        kit.Endpoint
	focus         kit.Endpoint
	pages         kit.Endpoint
	announcements kit.Endpoint
}

func (e *Engine) endpoints() endpoints {
	wrap := func(op string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Logging(e.logger, op))(ep)
	}
	return endpoints{
		navigate: wrap("navigate", func(ctx context.Context, req any) (any, error) {
			r := req.(*navigateReq)
			switch r.Direction {
			case "next":
				return e.Next(ctx)
			case "previous", "prev":
				return e.Previous(ctx)
			default:
				return nil, fmt.Errorf("axlive: unknown direction %q", r.Direction)
			}
		}),
		cursor: wrap("cursor", func(ctx context.Context, _ any) (any, error) {
			return e.Cursor(ctx)
		}),
		focus: wrap("focus", func(ctx context.Context, req any) (any, error) {
			r := req.(*focusReq)
			if err := e.Focus(ctx, r.PageID); err != nil {
				return nil, err
			}
			return map[string]string{"focused": r.PageID}, nil
		}),
		pages: wrap("pages", func(ctx context.Context, _ any) (any, error) {
			ids, err := e.Pages(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"pages": ids}, nil
		}),
		announcements: wrap("announcements", func(ctx context.Context, req any) (any, error) {
			r := req.(*announcementsReq)
			outs, err := e.Announcements(ctx, r.Limit)
			if err != nil {
				return nil, err
			}
			return map[string]any{"announcements": outs}, nil
		}),
	}
}
