package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"

	"github.com/eid-foundation/bankid-session/pkg"
	"github.com/eid-foundation/bankid-session/pkg/services"
	"github.com/eid-foundation/bankid-session/pkg/uservisible"
)

// Wrapper bridges the http layer to the flow registry.
type Wrapper struct {
	Flows pkg.FlowClient
}

// StartAuthSession starts an authentication order session.
func (w *Wrapper) StartAuthSession(ctx echo.Context) error {
	active, err := w.Flows.StartAuthentication(ctx.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("could not start authentication order: %s", err))
	}
	return ctx.JSON(http.StatusCreated, sessionCreated(active))
}

// StartSignSession fetches the source document, builds the signing statement
// from the posted metadata and starts a signing order session.
func (w *Wrapper) StartSignSession(ctx echo.Context) error {
	params := new(StartSignSessionRequest)
	if err := ctx.Bind(params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not parse request body")
	}

	document, err := w.Flows.FetchDocument(ctx.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("could not fetch document: %s", err))
	}

	active, err := w.Flows.StartSigning(ctx.Request().Context(), document, uservisible.Metadata{
		Author:       params.Author,
		CreationDate: params.CreationDate,
		Language:     params.Language,
		ModDate:      params.ModDate,
		Producer:     params.Producer,
		Title:        params.Title,
	})
	if err != nil {
		if errors.Is(err, uservisible.ErrMissingMetadata) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("could not start signing order: %s", err))
	}
	return ctx.JSON(http.StatusCreated, sessionCreated(active))
}

// GetSessionStatus reports the latest collected status of a session.
func (w *Wrapper) GetSessionStatus(ctx echo.Context, id string) error {
	active, err := w.Flows.SessionByID(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	response := SessionStatusResponse{
		SessionID:   active.ID,
		Kind:        string(active.Kind),
		Status:      string(active.Session.Status()),
		UserMessage: active.Session.UserMessage(),
		Credential:  active.Session.Credential(),
	}
	if latest := active.Session.Latest(); latest != nil {
		response.HintCode = latest.HintCode
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetSessionQr returns the current animated QR frame of a session.
func (w *Wrapper) GetSessionQr(ctx echo.Context, id string) error {
	active, err := w.Flows.SessionByID(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	frame := active.Session.RefreshQr(time.Now())
	return ctx.JSON(http.StatusOK, QrFrameResponse{Token: frame.Token, ElapsedSeconds: frame.ElapsedSeconds})
}

// GetSessionLaunchURL returns the deep link which opens the native app.
func (w *Wrapper) GetSessionLaunchURL(ctx echo.Context, id string) error {
	url, err := w.Flows.LaunchURL(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return ctx.JSON(http.StatusOK, LaunchResponse{URL: url})
}

// GetSignedDocument serves the signed artifact of a completed signing session.
func (w *Wrapper) GetSignedDocument(ctx echo.Context, id string) error {
	active, err := w.Flows.SessionByID(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if active.Coordinator == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "not a signing session")
	}
	signed, ok := active.Coordinator.SignedDocument()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no signed document available")
	}
	return ctx.Blob(http.StatusOK, "application/pdf", signed)
}

// StopSession tears a session down.
func (w *Wrapper) StopSession(ctx echo.Context, id string) error {
	if err := w.Flows.StopSession(id); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func sessionCreated(active *pkg.ActiveSession) SessionCreatedResponse {
	order := active.Session.Order()
	return SessionCreatedResponse{
		SessionID:      active.ID,
		OrderRef:       order.OrderRef,
		AutoStartToken: order.AutoStartToken,
	}
}

// RegisterHandlers mounts the session routes on the given router.
func RegisterHandlers(router runtime.EchoRouter, w *Wrapper) {
	router.POST("/session/auth", w.StartAuthSession)
	router.POST("/session/sign", w.StartSignSession)
	router.GET("/session/:id", func(ctx echo.Context) error { return w.GetSessionStatus(ctx, ctx.Param("id")) })
	router.GET("/session/:id/qr", func(ctx echo.Context) error { return w.GetSessionQr(ctx, ctx.Param("id")) })
	router.GET("/session/:id/launch", func(ctx echo.Context) error { return w.GetSessionLaunchURL(ctx, ctx.Param("id")) })
	router.GET("/session/:id/document", func(ctx echo.Context) error { return w.GetSignedDocument(ctx, ctx.Param("id")) })
	router.DELETE("/session/:id", func(ctx echo.Context) error { return w.StopSession(ctx, ctx.Param("id")) })
}
