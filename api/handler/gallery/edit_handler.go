package gallery

import (
	"net/http"
	"strconv"

	"github.com/devanderson/media-gallery/api/common"
	gallerysvc "github.com/devanderson/media-gallery/internal/gallery"
	"github.com/gin-gonic/gin"
)

// EditMedia 处理编辑后的图片替换
// 表单字段：file、media_id、file_name（可选）、state_path
func (h *Handler) EditMedia(c *gin.Context) {
	statePath := c.PostForm("state_path")
	if statePath == "" {
		common.RespondError(c, http.StatusBadRequest, "state_path is required")
		return
	}

	mediaID, err := strconv.ParseUint(c.PostForm("media_id"), 10, 64)
	if err != nil || mediaID == 0 {
		common.RespondError(c, http.StatusBadRequest, "A valid media_id is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "A file is required under the 'file' key")
		return
	}

	collector := NewCollector()
	session := gallerysvc.NewSession(collector, collector)
	key := gallerysvc.DataKey(statePath)

	src, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	staged, stageErr := h.staging.Stage(src, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	_ = src.Close()
	if stageErr != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to stage uploaded file")
		return
	}
	session.Stage(key+gallerysvc.EditedSlotSuffix, staged)

	fileName := c.PostForm("file_name")
	if err := h.edits.ApplyEdit(c.Request.Context(), session, uint(mediaID), fileName, statePath); err != nil {
		h.staging.Discard(session.TakeStaged(key + gallerysvc.EditedSlotSuffix))
		common.RespondErrorData(c, statusFor(err), err.Error(), gin.H{
			"notifications": collector.Notifications,
		})
		return
	}

	common.RespondSuccess(c, gin.H{
		"notifications": collector.Notifications,
	})
}
