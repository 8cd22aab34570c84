package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"pnodewatch/config"
	"pnodewatch/models"
	"pnodewatch/services"
)

type Handler struct {
	Cfg   *config.Config
	Cache *services.CacheService
	PRPC  *services.PRPCClient
}

func NewHandler(cfg *config.Config, cache *services.CacheService, prpc *services.PRPCClient) *Handler {
	return &Handler{
		Cfg:   cfg,
		Cache: cache,
		PRPC:  prpc,
	}
}

// GetNodes returns a paginated node list.
// Query params: page, limit, status, sort (latency, peers, storage, uptime), order.
func (h *Handler) GetNodes(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	statusFilter := c.QueryParam("status")
	sortField := c.QueryParam("sort")
	sortOrder := c.QueryParam("order")
	if sortOrder == "" {
		sortOrder = "desc"
	}

	// Fresh first, stale fallback
	nodes, stale, found := h.Cache.GetNodes(false)
	if !found {
		nodes, stale, found = h.Cache.GetNodes(true)
	}
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Node data temporarily unavailable",
		})
	}

	if statusFilter != "" {
		filtered := make([]*models.NodeRecord, 0)
		for _, node := range nodes {
			if node.Status == statusFilter {
				filtered = append(filtered, node)
			}
		}
		nodes = filtered
	}

	h.sortNodes(nodes, sortField, sortOrder)

	totalNodes := len(nodes)
	totalPages := (totalNodes + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	startIdx := (page - 1) * limit
	endIdx := startIdx + limit

	if startIdx >= totalNodes {
		startIdx = 0
		endIdx = 0
		page = 1
	}
	if endIdx > totalNodes {
		endIdx = totalNodes
	}

	paginated := make([]*models.NodeRecord, 0)
	if startIdx < endIdx {
		paginated = nodes[startIdx:endIdx]
	}

	response := NodesResponse{
		Nodes: paginated,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: totalNodes,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}

	if stale {
		c.Response().Header().Set("X-Data-Stale", "true")
	}

	return c.JSON(http.StatusOK, response)
}

// GetNode returns one node by ID or pubkey.
func (h *Handler) GetNode(c echo.Context) error {
	id := c.Param("id")

	node, stale, found := h.Cache.GetNode(id, false)
	if !found {
		node, stale, found = h.Cache.GetNode(id, true)
	}

	// Fallback to searching the node list
	if !found {
		nodes, _, listFound := h.Cache.GetNodes(true)
		if listFound {
			for _, n := range nodes {
				if n.ID == id || n.Pubkey == id {
					node = n
					found = true
					break
				}
			}
		}
	}

	if !found {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Node not found",
		})
	}

	if stale {
		c.Response().Header().Set("X-Data-Stale", "true")
	}

	return c.JSON(http.StatusOK, node)
}

func (h *Handler) sortNodes(nodes []*models.NodeRecord, field, order string) {
	asc := order == "asc"

	sort.SliceStable(nodes, func(i, j int) bool {
		var less bool
		switch field {
		case "latency":
			less = nodes[i].Latency < nodes[j].Latency
		case "peers":
			less = nodes[i].PeerCount < nodes[j].PeerCount
		case "storage":
			less = nodes[i].StorageUsed < nodes[j].StorageUsed
		case "uptime":
			less = nodes[i].Uptime < nodes[j].Uptime
		default:
			less = nodes[i].LastSeen.Before(nodes[j].LastSeen)
		}
		if asc {
			return less
		}
		return !less
	})
}

type NodesResponse struct {
	Nodes      []*models.NodeRecord `json:"nodes"`
	Pagination PaginationMeta       `json:"pagination"`
}

type PaginationMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}
