package gallery

import (
	gallerysvc "github.com/devanderson/media-gallery/internal/gallery"
)

// Notification 响应中携带的用户通知
type Notification struct {
	Level string `json:"level"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// Event 响应中携带的前端事件
type Event struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
}

// Collector 把会话中产生的通知和事件收集进响应体
type Collector struct {
	Notifications []Notification `json:"notifications"`
	Events        []Event        `json:"events"`
}

// NewCollector 创建响应收集器
func NewCollector() *Collector {
	return &Collector{
		Notifications: []Notification{},
		Events:        []Event{},
	}
}

func (c *Collector) Success(title, body string) {
	c.Notifications = append(c.Notifications, Notification{Level: "success", Title: title, Body: body})
}

func (c *Collector) Warning(title, body string) {
	c.Notifications = append(c.Notifications, Notification{Level: "warning", Title: title, Body: body})
}

func (c *Collector) Danger(title, body string) {
	c.Notifications = append(c.Notifications, Notification{Level: "danger", Title: title, Body: body})
}

func (c *Collector) MediaAdded(p gallerysvc.Projection) {
	c.Events = append(c.Events, Event{Name: "gallery:media-added", Payload: p})
}

func (c *Collector) MediaSynced(mediaType string, ids []uint) {
	c.Events = append(c.Events, Event{
		Name: "gallery:media-synced",
		Payload: map[string]interface{}{
			"type": mediaType,
			"ids":  ids,
		},
	})
}
