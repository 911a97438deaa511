package gallery

// Projection 媒体记录对外的投影视图
type Projection struct {
	ID           uint   `json:"id"`
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	IsVideo      bool   `json:"is_video"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
