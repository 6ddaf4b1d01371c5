package daemon

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
)

// LogOffsetHeader carries the offset a log reader continues from.
const LogOffsetHeader = "X-Log-Offset"

// ContainerInfo lists the types registered for a container id.
type ContainerInfo struct {
	ID    string   `json:"id"`
	Types []string `json:"types"`
}

// ActionResponse acknowledges a state change.
type ActionResponse struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// operationContext detaches container work from the request so a client
// hanging up does not abort a half started server.
func operationContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func (s *Server) listContainers(c echo.Context) error {
	containers := s.daemon.Registry().Containers
	ids := containers.ContainerIDs()
	sort.Strings(ids)

	out := make([]ContainerInfo, 0, len(ids))
	for _, id := range ids {
		info := ContainerInfo{ID: id}
		for _, t := range containers.Types(id) {
			info.Types = append(info.Types, string(t))
		}
		out = append(out, info)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) listHandles(c echo.Context) error {
	return c.JSON(http.StatusOK, s.daemon.Handles())
}

func (s *Server) getHandle(c echo.Context) error {
	status, err := s.daemon.Handle(c.Param("id"))
	if err != nil {
		return NotFoundError("Handle", c.Param("id"))
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) startHandle(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id := c.Param("id")
	if err := s.daemon.Start(operationContext(c), id, req); err != nil {
		s.logger.Error("cannot start server", "handle", id, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, ActionResponse{Handle: id, Status: "started"})
}

func (s *Server) restartHandle(c echo.Context) error {
	id := c.Param("id")
	if err := s.daemon.Restart(operationContext(c), id); err != nil {
		s.logger.Error("cannot restart server", "handle", id, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, ActionResponse{Handle: id, Status: "started"})
}

func (s *Server) stopHandle(c echo.Context) error {
	id := c.Param("id")
	remove, _ := strconv.ParseBool(c.QueryParam("deleteContainer"))
	if err := s.daemon.Stop(operationContext(c), id, remove); err != nil {
		s.logger.Error("cannot stop server", "handle", id, "error", err)
		return err
	}
	status := "stopped"
	if remove {
		status = "deleted"
	}
	return c.JSON(http.StatusOK, ActionResponse{Handle: id, Status: status})
}

func (s *Server) deleteHandle(c echo.Context) error {
	id := c.Param("id")
	if err := s.daemon.Stop(operationContext(c), id, true); err != nil {
		s.logger.Error("cannot delete handle", "handle", id, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, ActionResponse{Handle: id, Status: "deleted"})
}

func (s *Server) viewLog(c echo.Context) error {
	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)
	data, next, err := s.daemon.Log(c.Param("id"), offset)
	if err != nil {
		return err
	}
	c.Response().Header().Set(LogOffsetHeader, strconv.FormatInt(next, 10))
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, data)
}
