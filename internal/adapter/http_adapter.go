package adapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"book-finder/internal/core"
	"book-finder/internal/core/model"
	"book-finder/internal/middleware"
	"book-finder/pkg/util"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	noResultsMessage   = "No books found. Start searching!"
	noFavoritesMessage = "No favorites yet!"
)

type Handler struct {
	Svc      *core.Service
	log      *slog.Logger
	validate *validator.Validate
}

func NewHTTPHandler(svc *core.Service, logger *slog.Logger) *Handler {
	return &Handler{Svc: svc, log: logger, validate: validator.New()}
}

// NewRouter mounts the API, health and metrics endpoints with the standard
// middleware stack.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", h.Routes)
	return r
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/search", h.Search)
	r.Get("/books/{id}", h.GetBookById)

	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites", h.AddFavorite)
	r.Get("/favorites/{id}", h.GetFavoriteById)
	r.Delete("/favorites/{id}", h.DeleteFavoriteById)

	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.SetTheme)
	r.Post("/theme/toggle", h.ToggleTheme)
}

type httpError struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details map[string]interface{}) {
	e := httpError{}
	e.Error.Code = code
	e.Error.Message = msg
	e.Error.Details = details
	writeJSON(w, status, e)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request", nil)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	default:
		middleware.For(r.Context(), h.log).Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

// pathID binds the {id} path parameter.
func pathID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	return id, err
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchResponse struct {
	State      model.PageState  `json:"state"`
	Location   string           `json:"location"`
	Items      []core.ItemView  `json:"items"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
	Window     []core.PageLabel `json:"window"`
	Message    string           `json:"message,omitempty"`
}

// Search treats the request's query string as the page state to display.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	view := h.Svc.Search(r.Context(), r.URL.Query())
	resp := searchResponse{
		State:      view.State,
		Location:   view.Location,
		Items:      h.Svc.Cards(view.Items),
		TotalItems: view.TotalItems,
		TotalPages: view.TotalPages,
		Window:     view.Window,
	}
	if len(resp.Items) == 0 {
		resp.Message = noResultsMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

type bookResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	AuthorLine    string   `json:"authorLine"`
	ThumbnailURL  string   `json:"thumbnailUrl,omitempty"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Favorite      bool     `json:"favorite"`
}

func (h *Handler) toBookResponse(it model.Item) bookResponse {
	authors := it.Authors
	if authors == nil {
		authors = []string{}
	}
	return bookResponse{
		ID:            it.ID,
		Title:         it.Title,
		Authors:       authors,
		AuthorLine:    it.AuthorLine(),
		ThumbnailURL:  it.ThumbnailURL,
		Description:   it.DescriptionOrDefault(),
		Categories:    it.Categories,
		PublishedDate: it.PublishedDate,
		Favorite:      h.Svc.Favorites.Contains(it.ID),
	}
}

func (h *Handler) GetBookById(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	it, err := h.Svc.GetBook(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toBookResponse(it))
}

type paginatedFavorites struct {
	Data     []core.ItemView `json:"data"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
	Message  string          `json:"message,omitempty"`
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	var page, pageSize *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid page", map[string]interface{}{"param": "page"})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page_size", r.URL.Query(), &pageSize); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid page_size", map[string]interface{}{"param": "page_size"})
		return
	}

	p := h.Svc.Favorites.Page(util.ValueOr(page, 1), util.ValueOr(pageSize, 20))
	out := paginatedFavorites{
		Data:     make([]core.ItemView, 0, len(p.Data)),
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
	}
	for _, it := range p.Data {
		out.Data = append(out.Data, core.NewItemView(it, true))
	}
	if p.Total == 0 {
		out.Message = noFavoritesMessage
	}
	writeJSON(w, http.StatusOK, out)
}

type favoriteRequest struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	ThumbnailURL  string   `json:"thumbnailUrl"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"publishedDate"`
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id is required", nil)
		return
	}

	existed := h.Svc.Favorites.Contains(req.ID)
	it, err := h.Svc.AddFavorite(r.Context(), model.Item{
		ID:            req.ID,
		Title:         req.Title,
		Authors:       req.Authors,
		ThumbnailURL:  req.ThumbnailURL,
		Description:   req.Description,
		Categories:    req.Categories,
		PublishedDate: req.PublishedDate,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/api/v1/favorites/"+it.ID)
	writeJSON(w, status, h.toBookResponse(it))
}

func (h *Handler) GetFavoriteById(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	it, ok := h.Svc.Favorites.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not a favorite", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.toBookResponse(it))
}

// DeleteFavoriteById is idempotent: removing an absent id is still 204.
func (h *Handler) DeleteFavoriteById(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if err := h.Svc.Favorites.Remove(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type themeBody struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: string(h.Svc.Theme.Get())})
}

func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "theme must be light or dark", nil)
		return
	}
	if err := h.Svc.Theme.Set(r.Context(), model.Theme(body.Theme)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.Theme.Toggle(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: string(t)})
}
