package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roach88/treegrid/internal/layout"
	"github.com/roach88/treegrid/internal/store"
	"github.com/roach88/treegrid/internal/tree"
)

type GenericStatus struct {
	Status  string `json:"status"`
	Daemon  string `json:"daemon"`
	Message string `json:"msg,omitempty"`
}

type createResponse struct {
	ID int64 `json:"id"`
}

var emptyObject = struct{}{}

var errFailed = echo.NewHTTPError(http.StatusInternalServerError)

func (srv *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 && code != http.StatusNotImplemented {
		srv.logger.Warn("treegrid-http-internal-error", "err", err)
	}
	// the node API answers failures with an empty object
	c.JSON(code, emptyObject)
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	if err := srv.store.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, GenericStatus{Status: "error", Daemon: "treegrid", Message: "database unavailable"})
	}
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: "treegrid"})
}

func parseID(c echo.Context) (int64, error) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func (srv *Server) HandleCreate(c echo.Context) error {
	parent, err := parseID(c)
	if err != nil {
		return err
	}
	id, err := srv.store.Create(c.Request().Context(), srv.scope, parent)
	countRequest("create", err)
	if err != nil {
		srv.logger.Info("create refused", "parent", parent, "err", err)
		return errFailed.WithInternal(err)
	}
	return c.JSON(http.StatusOK, createResponse{ID: id})
}

func (srv *Server) HandleDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = srv.store.Delete(c.Request().Context(), srv.scope, id)
	countRequest("delete", err)
	if err != nil {
		srv.logger.Info("delete refused", "id", id, "err", err)
		return errFailed.WithInternal(err)
	}
	return c.JSON(http.StatusOK, emptyObject)
}

func (srv *Server) HandleList(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	// only the full listing is supported
	if id != store.RootID {
		return echo.NewHTTPError(http.StatusNotImplemented)
	}
	edges, err := srv.store.ListAll(c.Request().Context(), srv.scope)
	countRequest("list", err)
	if err != nil {
		return errFailed.WithInternal(err)
	}
	pairs := make([][2]int64, len(edges))
	for i, e := range edges {
		pairs[i] = [2]int64{e.ID, e.Parent}
	}
	return c.JSON(http.StatusOK, pairs)
}

// HandleGrid loads the scope into a fresh node store and returns its
// layout, as JSON or, with ?format=text, as a rendered table.
func (srv *Server) HandleGrid(c echo.Context) error {
	ctx := c.Request().Context()
	nodes := tree.New(srv.store.Authority(srv.scope), tree.WithLogger(srv.logger))
	_, err := nodes.LoadAll(ctx)
	countRequest("grid", err)
	if err != nil {
		return errFailed.WithInternal(err)
	}

	grid := layout.Compute(nodes.Snapshot())
	gridWidth.Set(float64(grid.Width))

	if c.QueryParam("format") == "text" {
		var buf bytes.Buffer
		if err := layout.RenderText(&buf, grid); err != nil {
			return errFailed.WithInternal(err)
		}
		return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
	}
	return c.JSON(http.StatusOK, grid)
}
