package gallery

import (
	"net/http"

	"github.com/devanderson/media-gallery/api/common"
	gallerysvc "github.com/devanderson/media-gallery/internal/gallery"
	"github.com/gin-gonic/gin"
)

// UploadMedia 处理新媒体上传提交
// 表单字段：file（文件）、state_path（字段状态路径）、state（当前选中项，JSON）
func (h *Handler) UploadMedia(c *gin.Context) {
	statePath := c.PostForm("state_path")
	if statePath == "" {
		common.RespondError(c, http.StatusBadRequest, "state_path is required")
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
	if state := c.PostForm("state"); state != "" {
		session.SetState(key, state)
	}

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
	session.Stage(key+gallerysvc.NewUploadSlotSuffix, staged)

	projection, err := h.uploads.CommitNewUpload(c.Request.Context(), session, statePath)
	if err != nil {
		// 暂存文件随失败请求一起清理
		h.staging.Discard(session.TakeStaged(key + gallerysvc.NewUploadSlotSuffix))
		common.RespondErrorData(c, statusFor(err), err.Error(), gin.H{
			"notifications": collector.Notifications,
			"events":        collector.Events,
		})
		return
	}

	common.RespondSuccess(c, gin.H{
		"media":         projection,
		"state":         session.State(key),
		"notifications": collector.Notifications,
		"events":        collector.Events,
	})
}
