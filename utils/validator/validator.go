package validator

import (
	"io"
	"net/http"
	"strings"
)

// DetectMime 读取文件头部并嗅探 MIME 类型，读取后会把指针重置到开头
func DetectMime(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}

// IsAllowedMime 检查 MIME 类型是否在允许列表中，比较前双方都会归一化
func IsAllowedMime(mimeType string, allowed []string) bool {
	mimeType = normalizeMime(mimeType)
	for _, a := range allowed {
		if normalizeMime(a) == mimeType {
			return true
		}
	}
	return false
}

// ValidateFile 嗅探文件并校验是否为允许的类型，返回检测到的 MIME
func ValidateFile(file io.ReadSeeker, allowed []string) (bool, string, error) {
	mimeType, err := DetectMime(file)
	if err != nil {
		return false, "", err
	}
	return IsAllowedMime(mimeType, allowed), mimeType, nil
}

// normalizeMime 去除参数部分并转小写，如 "video/mp4; codecs=..." -> "video/mp4"
func normalizeMime(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
