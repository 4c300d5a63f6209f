package controllers

import (
	"errors"
	"io"
	"net/http"

	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
)

// PostsController handles /posts.
type PostsController struct {
	svc *channelsvc.Service
}

func NewPostsController(svc *channelsvc.Service) *PostsController {
	return &PostsController{svc: svc}
}

// RegisterRoutes registers GET and POST /posts?channel=<name>.
func (c *PostsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/posts", c.handle)
}

func (c *PostsController) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.handleList(w, r)
	case http.MethodPost:
		c.handleSubmit(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// handleList returns posts ordered by createdAt. A missing or invalid limit
// falls back to the service default.
func (c *PostsController) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	posts, err := c.svc.ListPosts(r.Context(), q.Get("channel"), parseLimit(q.Get("limit")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, posts)
}

func (c *PostsController) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPostBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeText(w, http.StatusRequestEntityTooLarge, "Post too large")
			return
		}
		writeText(w, http.StatusBadRequest, "invalid post")
		return
	}
	if _, err := c.svc.SubmitPost(r.Context(), r.URL.Query().Get("channel"), body); err != nil {
		writeServiceError(w, err)
		return
	}
	writeText(w, http.StatusCreated, "Post made")
}
