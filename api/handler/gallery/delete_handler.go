package gallery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/devanderson/media-gallery/api/common"
	"github.com/devanderson/media-gallery/database/models"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	"github.com/gin-gonic/gin"
)

// DeleteMedia 删除媒体记录及其文件
// 路径参数 id，查询参数 type=image|video（默认 image）
func (h *Handler) DeleteMedia(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusBadRequest, "A valid id is required")
		return
	}

	mediaType := models.MediaType(c.DefaultQuery("type", string(models.MediaTypeImage)))
	if !mediaType.Valid() {
		common.RespondError(c, http.StatusBadRequest, "type must be 'image' or 'video'")
		return
	}

	if err := h.deletes.Delete(c.Request.Context(), mediaType, uint(id)); err != nil {
		if errors.Is(err, mediarepo.ErrMediaNotFound) {
			common.RespondError(c, http.StatusNotFound, "Media not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete media")
		return
	}

	common.RespondSuccessMessage(c, "Media deleted", nil)
}
