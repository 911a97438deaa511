package gallery

// Notifier 用户可见的通知出口
type Notifier interface {
	Success(title, body string)
	Warning(title, body string)
	Danger(title, body string)
}

// Events 前端事件出口
type Events interface {
	MediaAdded(p Projection)
	MediaSynced(mediaType string, ids []uint)
}

// NopNotifier 丢弃所有通知
type NopNotifier struct{}

func (NopNotifier) Success(title, body string) {}
func (NopNotifier) Warning(title, body string) {}
func (NopNotifier) Danger(title, body string)  {}

// NopEvents 丢弃所有事件
type NopEvents struct{}

func (NopEvents) MediaAdded(p Projection)                  {}
func (NopEvents) MediaSynced(mediaType string, ids []uint) {}
