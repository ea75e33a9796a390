package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Combine fans each event out to every hook set, in order.
func Combine(sets ...domain.Hooks) domain.Hooks {
	var out domain.Hooks
	for _, h := range sets {
		h := h
		if h.OnScreenOpen != nil {
			prev := out.OnScreenOpen
			out.OnScreenOpen = func(ctx context.Context, e *domain.ScreenEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnScreenOpen(ctx, e)
			}
		}
		if h.OnCommit != nil {
			prev := out.OnCommit
			out.OnCommit = func(ctx context.Context, e *domain.CommitEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCommit(ctx, e)
			}
		}
		if h.OnNavigate != nil {
			prev := out.OnNavigate
			out.OnNavigate = func(ctx context.Context, e *domain.NavigateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNavigate(ctx, e)
			}
		}
	}
	return out
}

// LogHooks writes an audit line per event.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnScreenOpen: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.InfoContext(ctx, "screen_open",
				"session_id", e.SessionID,
				"path", e.Path,
				"restored", e.Restored,
			)
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"path", e.Path,
				"definition_id", e.DefinitionID,
				"index", e.Index,
				"written", e.Written,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "commit", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "commit", attrs...)
		},
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			logger.InfoContext(ctx, "navigate",
				"session_id", e.SessionID,
				"path", e.Path,
				"definition_id", e.DefinitionID,
				"from", e.From,
				"to", e.To,
			)
		},
	}
}
