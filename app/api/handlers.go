package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/leaderboard/core/handler"
	"github.com/dmitrymomot/leaderboard/core/logger"
	"github.com/dmitrymomot/leaderboard/core/response"
	"github.com/dmitrymomot/leaderboard/core/router"
	"github.com/dmitrymomot/leaderboard/leaderboard"
)

const (
	liveWriteWait    = 10 * time.Second
	livePingInterval = 30 * time.Second
)

type sessionResponse struct {
	Token string `json:"token"`
}

type submitRequest struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
	Token string   `json:"token"`
}

// liveMessage is the websocket envelope. Admitted is set when the snapshot
// follows an admission.
type liveMessage struct {
	Type     string              `json:"type"`
	Admitted *leaderboard.Entry  `json:"admitted,omitempty"`
	Entries  []leaderboard.Entry `json:"entries"`
}

func (a *App) issueSession(ctx *router.Context) handler.Response {
	token, err := a.guard.Issue(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return response.JSONWithStatus(sessionResponse{Token: token}, http.StatusCreated)
}

func (a *App) listTop(ctx *router.Context) handler.Response {
	entries, err := a.engine.Top(ctx, limitParam(ctx.Request()))
	if err != nil {
		return errorResponse(err)
	}
	return response.JSON(entries)
}

// submitScore validates the input before the token so a rejected name or
// score leaves the token usable.
func (a *App) submitScore(ctx *router.Context) handler.Response {
	var req submitRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return response.Error(response.ErrRequestTooLarge)
		}
		return response.Error(errInvalidBody)
	}

	name, err := leaderboard.NormalizeName(req.Name)
	if err != nil {
		return errorResponse(err)
	}
	if req.Score == nil {
		return errorResponse(leaderboard.ErrInvalidScore)
	}
	score, err := leaderboard.NormalizeScore(*req.Score)
	if err != nil {
		return errorResponse(err)
	}

	if err := a.guard.Validate(ctx, req.Token); err != nil {
		return errorResponse(err)
	}

	entry, err := a.engine.Submit(ctx, name, float64(score))
	if err != nil {
		return errorResponse(err)
	}
	return response.JSONWithStatus(entry, http.StatusCreated)
}

// live streams the ranked list: once on connect, then after every admission.
func (a *App) live(ctx *router.Context) handler.Response {
	limit := limitParam(ctx.Request())

	return response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sub := a.feed.Subscribe(ctx)
		defer func() { _ = sub.Close() }()

		// Viewers never send; reading surfaces the close frame.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		if err := a.sendSnapshot(ctx, conn, limit, nil); err != nil {
			return err
		}

		ping := time.NewTicker(livePingInterval)
		defer ping.Stop()

		messages := sub.Receive(ctx)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ping.C:
				deadline := time.Now().Add(liveWriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return err
				}
			case msg, ok := <-messages:
				if !ok {
					return conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
						time.Now().Add(liveWriteWait))
				}
				if err := a.sendSnapshot(ctx, conn, limit, &msg.Data); err != nil {
					return err
				}
			}
		}
	}, response.WithWSOrigins(a.corsOrigins...), response.WithWSErrorHandler(func(ctx context.Context, err error) {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return
		}
		a.logger.DebugContext(ctx, "live view closed", logger.Error(err))
	}))
}

func (a *App) sendSnapshot(ctx context.Context, conn *websocket.Conn, limit int, admitted *leaderboard.Entry) error {
	entries, err := a.engine.Top(ctx, limit)
	if err != nil {
		return err
	}

	msg := liveMessage{Type: "snapshot", Entries: entries}
	if admitted != nil {
		msg.Type = "admitted"
		msg.Admitted = admitted
	}

	if err := conn.SetWriteDeadline(time.Now().Add(liveWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// limitParam reads ?limit; a missing or invalid value falls back to the
// default limit.
func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}
