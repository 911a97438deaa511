package gallery

import "errors"

var (
	// ErrFieldConfigNotFound 字段配置无法解析
	ErrFieldConfigNotFound = errors.New("field configuration not found")

	// ErrUploadNotAllowed 字段禁用了上传
	ErrUploadNotAllowed = errors.New("uploads not allowed for field")

	// ErrLimitReached 字段已达到允许的媒体数量上限
	ErrLimitReached = errors.New("media limit reached for field")

	// ErrStagedFileMissing 暂存槽位中没有待提交的文件
	ErrStagedFileMissing = errors.New("staged file missing")

	// ErrUnsupportedMediaType 文件类型不在允许列表中
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFileTooLarge 文件超过大小限制
	ErrFileTooLarge = errors.New("file too large")
)
