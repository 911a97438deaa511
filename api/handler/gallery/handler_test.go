package gallery

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	gallerysvc "github.com/devanderson/media-gallery/internal/gallery"
	"github.com/stretchr/testify/assert"
)

// --- 测试错误到状态码的映射 ---

func TestStatusFor(t *testing.T) {
	// 业务校验错误归为 422
	for _, err := range []error{
		gallerysvc.ErrLimitReached,
		gallerysvc.ErrUploadNotAllowed,
		gallerysvc.ErrUnsupportedMediaType,
		gallerysvc.ErrFileTooLarge,
		gallerysvc.ErrStagedFileMissing,
		gallerysvc.ErrFieldConfigNotFound,
	} {
		assert.Equal(t, http.StatusUnprocessableEntity, statusFor(err), err.Error())
	}

	// 记录不存在归为 404，包装后同样识别
	assert.Equal(t, http.StatusNotFound, statusFor(mediarepo.ErrMediaNotFound))
	assert.Equal(t, http.StatusNotFound,
		statusFor(fmt.Errorf("failed to delete image 3: %w", mediarepo.ErrMediaNotFound)))

	// 其余归为 500
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
