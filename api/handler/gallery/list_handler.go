package gallery

import (
	"net/http"
	"strconv"

	"github.com/devanderson/media-gallery/api/common"
	gallerysvc "github.com/devanderson/media-gallery/internal/gallery"
	"github.com/gin-gonic/gin"
)

// ListMedia 分页返回媒体库内容
// 查询参数：state_path（决定媒体类型）、page、per_page
func (h *Handler) ListMedia(c *gin.Context) {
	statePath := c.Query("state_path")
	if statePath == "" {
		common.RespondError(c, http.StatusBadRequest, "state_path is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	session := gallerysvc.NewSession(nil, nil)
	fieldCfg, err := h.resolver.Resolve(session, statePath)
	if err != nil {
		common.RespondError(c, statusFor(err), err.Error())
		return
	}

	items, hasMore, err := h.pager.Page(c.Request.Context(), fieldCfg.MediaType, page, perPage)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load media")
		return
	}

	common.RespondSuccess(c, gin.H{
		"media":    items,
		"has_more": hasMore,
	})
}

// ResolveSelection 将选中的ID集合解析为投影列表
// 查询参数：state_path、ids（JSON 数组或逗号分隔）
func (h *Handler) ResolveSelection(c *gin.Context) {
	statePath := c.Query("state_path")
	if statePath == "" {
		common.RespondError(c, http.StatusBadRequest, "state_path is required")
		return
	}

	session := gallerysvc.NewSession(nil, nil)
	fieldCfg, err := h.resolver.Resolve(session, statePath)
	if err != nil {
		common.RespondError(c, statusFor(err), err.Error())
		return
	}

	set := gallerysvc.ParseIDSet(c.Query("ids"))
	items, err := h.queries.ResolveSelection(c.Request.Context(), fieldCfg.MediaType, set)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to resolve selection")
		return
	}

	common.RespondSuccess(c, gin.H{
		"media": items,
	})
}
