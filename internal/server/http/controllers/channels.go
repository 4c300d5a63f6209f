package controllers

import (
	"net/http"

	"github.com/cis1951/lec8-backend/internal/post"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
)

// ChannelsController handles /channels.
type ChannelsController struct {
	svc *channelsvc.Service
}

func NewChannelsController(svc *channelsvc.Service) *ChannelsController {
	return &ChannelsController{svc: svc}
}

// RegisterRoutes registers:
//   - GET /channels                   list channels with their posts
//   - POST /channels?channel=<name>   create
//   - DELETE /channels?channel=<name> delete
func (c *ChannelsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/channels", c.handle)
}

func (c *ChannelsController) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.handleList(w, r)
	case http.MethodPost:
		c.handleCreate(w, r)
	case http.MethodDelete:
		c.handleDelete(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (c *ChannelsController) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := c.svc.ListChannelsWithPosts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, list)
}

func (c *ChannelsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	ch, err := c.svc.CreateChannel(r.Context(), r.URL.Query().Get("channel"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, channelsvc.ChannelWithPosts{Channel: ch, Posts: []post.Post{}})
}

func (c *ChannelsController) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.DeleteChannel(r.Context(), r.URL.Query().Get("channel")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
