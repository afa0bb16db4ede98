package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
	"github.com/GriffinCanCode/erpshell/internal/shell"
)

// OpenTabRequest is the body of POST /shell/tabs.
type OpenTabRequest struct {
	ComponentKey string         `json:"componentKey" binding:"required"`
	Params       map[string]any `json:"params"`
}

// State returns the navigation state.
func (h *Handlers) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.shell.State())
}

// ListModules returns the module tiles, filtered by ?q= when given.
func (h *Handlers) ListModules(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"modules": h.shell.Modules()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": h.shell.Search(q)})
}

// GetModule resolves a module. Unknown modules answer 200 with the
// placeholder component so the client can render it.
func (h *Handlers) GetModule(c *gin.Context) {
	key := c.Param("key")
	if err := utils.ValidateComponentKey(key); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.shell.Registry().Load(c.Request.Context(), key))
}

// ActiveModule returns the active tab with its mounted component.
func (h *Handlers) ActiveModule(c *gin.Context) {
	tab, comp := h.shell.ActiveComponent(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"tab": tab, "component": comp})
}

// EvictModules drops cached modules named by ?key= (repeatable), or all.
func (h *Handlers) EvictModules(c *gin.Context) {
	keys := c.QueryArray("key")
	evicted := h.shell.Registry().Evict(keys...)
	c.JSON(http.StatusOK, gin.H{"evicted": evicted})
}

// OpenTab opens or focuses the tab of a module.
func (h *Handlers) OpenTab(c *gin.Context) {
	var req OpenTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "componentKey is required"})
		return
	}

	before := len(h.shell.State().Tabs)
	tab, err := h.shell.OpenModule(c.Request.Context(), req.ComponentKey, req.Params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if len(h.shell.State().Tabs) > before {
		status = http.StatusCreated
	}
	c.JSON(status, tab)
}

// ActivateTab focuses a tab.
func (h *Handlers) ActivateTab(c *gin.Context) {
	tabID := c.Param("id")
	if err := utils.ValidateID(tabID, "tab id"); err != nil {
		h.respondError(c, err)
		return
	}

	ok, err := h.shell.ActivateTab(c.Request.Context(), tabID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "tab_id": tabID})
}

// CloseTab closes a tab. The Home tab and unknown ids report success=false.
func (h *Handlers) CloseTab(c *gin.Context) {
	tabID := c.Param("id")
	if err := utils.ValidateID(tabID, "tab id"); err != nil {
		h.respondError(c, err)
		return
	}

	ok, err := h.shell.CloseTab(c.Request.Context(), tabID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "tab_id": tabID})
}

// CloseOthers keeps only Home and the given tab.
func (h *Handlers) CloseOthers(c *gin.Context) {
	tabID := c.Param("id")
	if err := h.shell.CloseOthers(c.Request.Context(), tabID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.shell.State())
}

// Back moves back in the tab history.
func (h *Handlers) Back(c *gin.Context) {
	ok, err := h.shell.Back(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "activeTabId": h.shell.State().ActiveTabID})
}

// PerformKey runs a keyboard action given by name (close_tab) or by key
// (alt+w).
func (h *Handlers) PerformKey(c *gin.Context) {
	name := c.Param("action")

	var (
		res shell.Result
		err error
	)
	if action, perr := shell.ParseAction(name); perr == nil {
		res, err = h.shell.Perform(c.Request.Context(), action)
	} else {
		res, err = h.shell.PerformKey(c.Request.Context(), name)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
