package inject

import (
	"time"

	"github.com/dshills/deckstorm/internal/app"
	"github.com/dshills/deckstorm/internal/navigation"
	"github.com/dshills/deckstorm/internal/render"
)

type slideView struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Class   string `json:"class,omitempty"`
}

type deckView struct {
	HTML       string      `json:"html"`
	CSS        string      `json:"css"`
	SlideCount int         `json:"slide_count"`
	Slides     []slideView `json:"slides"`
	Comments   []string    `json:"comments"`
	Timestamp  time.Time   `json:"timestamp"`
}

func newDeckView(r *render.Result) deckView {
	slides := make([]slideView, len(r.Slides))
	for i, s := range r.Slides {
		slides[i] = slideView(s)
	}
	comments := r.Comments
	if comments == nil {
		comments = []string{}
	}
	return deckView{
		HTML:       r.HTML,
		CSS:        r.CSS,
		SlideCount: r.SlideCount,
		Slides:     slides,
		Comments:   comments,
		Timestamp:  r.Timestamp,
	}
}

type documentView struct {
	Length          int       `json:"length"`
	IsModified      bool      `json:"is_modified"`
	IsLargeFile     bool      `json:"is_large_file"`
	IsSynced        bool      `json:"is_synced"`
	LastSyncTime    time.Time `json:"last_sync_time"`
	LastSaveTime    time.Time `json:"last_save_time"`
	AutoSaveEnabled bool      `json:"auto_save_enabled"`
	Error           string    `json:"error,omitempty"`
}

type renderView struct {
	State          render.State `json:"state"`
	Error          string       `json:"error,omitempty"`
	ErrorType      string       `json:"error_type,omitempty"`
	Line           int          `json:"line,omitempty"`
	Column         int          `json:"column,omitempty"`
	LastRenderTime time.Time    `json:"last_render_time"`
	RenderCount    int          `json:"render_count"`
}

type navigationView struct {
	CurrentSlide        int     `json:"current_slide"`
	TotalSlides         int     `json:"total_slides"`
	ZoomLevel           float64 `json:"zoom_level"`
	ShowThumbnails      bool    `json:"show_thumbnails"`
	IsFullscreen        bool    `json:"is_fullscreen"`
	ThumbnailPanelWidth int     `json:"thumbnail_panel_width"`
}

type statusView struct {
	Document   documentView        `json:"document"`
	Render     renderView          `json:"render"`
	Navigation navigationView      `json:"navigation"`
	Metrics    app.MetricsSnapshot `json:"metrics"`
}

func newNavigationView(s navigation.State) navigationView {
	return navigationView(s)
}

func newStatusView(s app.Status) statusView {
	d := s.Document
	rv := renderView{
		State:          s.Render.State,
		LastRenderTime: s.Render.LastRenderTime,
		RenderCount:    s.Render.RenderCount,
	}
	if e := s.Render.Err; e != nil {
		rv.Error = e.Error()
		rv.ErrorType = string(e.Type)
		rv.Line, rv.Column = e.Line, e.Column
	}
	return statusView{
		Document: documentView{
			Length:          d.Length,
			IsModified:      d.IsModified,
			IsLargeFile:     d.IsLargeFile,
			IsSynced:        d.IsSynced,
			LastSyncTime:    d.LastSyncTime,
			LastSaveTime:    d.LastSaveTime,
			AutoSaveEnabled: d.AutoSaveEnabled,
			Error:           d.Error,
		},
		Render:     rv,
		Navigation: newNavigationView(s.Navigation),
		Metrics:    s.Metrics,
	}
}

type dimensionsView struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

type thumbnailView struct {
	Index      int            `json:"index"`
	HTML       string         `json:"html"`
	Title      string         `json:"title"`
	Dimensions dimensionsView `json:"dimensions"`
	IsActive   bool           `json:"is_active"`
}

func newThumbnailView(t navigation.Thumbnail) thumbnailView {
	return thumbnailView{
		Index:      t.Index,
		HTML:       t.HTML,
		Title:      t.Title,
		Dimensions: dimensionsView(t.Dimensions),
		IsActive:   t.IsActive,
	}
}
