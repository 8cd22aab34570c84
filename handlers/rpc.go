package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pnodewatch/models"
)

// ProxyRPC forwards a JSON-RPC request to the pRPC bridge. Only the
// request body passes through; the bridge endpoint comes from config.
func (h *Handler) ProxyRPC(c echo.Context) error {
	var req models.RPCRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON-RPC request"})
	}

	if req.Method == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "method is required"})
	}

	resp, err := h.PRPC.Call(req.Method, req.Params)
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}
