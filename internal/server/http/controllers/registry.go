package controllers

import (
	"net/http"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/runtime"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	"github.com/cis1951/lec8-backend/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general  *GeneralController
	channels *ChannelsController
	posts    *PostsController
	live     *LiveController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, svc *channelsvc.Service, bc *broadcast.Broadcaster, logger log.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt, bc),
		channels: NewChannelsController(svc),
		posts:    NewPostsController(svc),
		live:     NewLiveController(svc, bc, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.channels.RegisterRoutes(mux)
	r.posts.RegisterRoutes(mux)
	r.live.RegisterRoutes(mux)
}

// CloseLive drops every open WebSocket connection. Hijacked connections are
// not closed by http.Server.Shutdown.
func (r *ControllerRegistry) CloseLive() {
	r.live.CloseAll()
}
