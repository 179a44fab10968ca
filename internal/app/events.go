package app

import (
	"time"

	"github.com/dshills/deckstorm/internal/event/topic"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/render"
)

// Topics published on the application bus.
const (
	TopicDocumentChanged   topic.Topic = "document.changed"
	TopicRenderStatus      topic.Topic = "render.status"
	TopicRenderCompleted   topic.Topic = "render.completed"
	TopicNavigationChanged topic.Topic = "navigation.changed"
	TopicPersistSaved      topic.Topic = "persist.saved"
	TopicPersistFailed     topic.Topic = "persist.failed"
)

// DocumentChanged is the payload of TopicDocumentChanged.
type DocumentChanged struct {
	Origin     string `json:"origin"`
	Length     int    `json:"length"`
	IsModified bool   `json:"is_modified"`
	IsSynced   bool   `json:"is_synced"`
}

// RenderStatus is the payload of TopicRenderStatus.
type RenderStatus struct {
	State       render.State `json:"state"`
	Error       string       `json:"error,omitempty"`
	ErrorType   string       `json:"error_type,omitempty"`
	RenderCount int          `json:"render_count"`
}

// RenderCompleted is the payload of TopicRenderCompleted.
type RenderCompleted struct {
	SlideCount  int           `json:"slide_count"`
	RenderCount int           `json:"render_count"`
	Duration    time.Duration `json:"duration"`
}

// NavigationChanged is the payload of TopicNavigationChanged.
type NavigationChanged struct {
	State navigation.State `json:"state"`
}

// PersistSaved is the payload of TopicPersistSaved.
type PersistSaved struct {
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
	Bytes     int       `json:"bytes"`
}

// PersistFailed is the payload of TopicPersistFailed.
type PersistFailed struct {
	Trigger string `json:"trigger"`
	Error   string `json:"error"`
}
