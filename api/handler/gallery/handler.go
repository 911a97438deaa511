package gallery

import (
	"errors"
	"net/http"

	"github.com/devanderson/media-gallery/config"
	mediarepo "github.com/devanderson/media-gallery/database/repo/media"
	gallerysvc "github.com/devanderson/media-gallery/internal/gallery"
	"github.com/devanderson/media-gallery/internal/staging"
)

// Handler 媒体库接口处理器
type Handler struct {
	cfg      *config.Config
	staging  *staging.Store
	resolver *gallerysvc.Resolver
	uploads  *gallerysvc.UploadService
	edits    *gallerysvc.EditService
	deletes  *gallerysvc.DeleteService
	pager    *gallerysvc.Pager
	queries  *gallerysvc.QueryService
}

// NewHandler 创建媒体库接口处理器
func NewHandler(
	cfg *config.Config,
	stagingStore *staging.Store,
	resolver *gallerysvc.Resolver,
	uploads *gallerysvc.UploadService,
	edits *gallerysvc.EditService,
	deletes *gallerysvc.DeleteService,
	pager *gallerysvc.Pager,
	queries *gallerysvc.QueryService,
) *Handler {
	return &Handler{
		cfg:      cfg,
		staging:  stagingStore,
		resolver: resolver,
		uploads:  uploads,
		edits:    edits,
		deletes:  deletes,
		pager:    pager,
		queries:  queries,
	}
}

// statusFor 将业务错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, mediarepo.ErrMediaNotFound):
		return http.StatusNotFound
	case errors.Is(err, gallerysvc.ErrLimitReached),
		errors.Is(err, gallerysvc.ErrUploadNotAllowed),
		errors.Is(err, gallerysvc.ErrUnsupportedMediaType),
		errors.Is(err, gallerysvc.ErrFileTooLarge),
		errors.Is(err, gallerysvc.ErrStagedFileMissing),
		errors.Is(err, gallerysvc.ErrFieldConfigNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
