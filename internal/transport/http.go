package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"proofkit/internal/domain/album"
	"proofkit/internal/domain/project"
	"proofkit/internal/domain/viewer"
)

// Uploads are streamed, but multipart form fields still buffer in memory.
const maxUploadMemory = 32 << 20

// Server wires HTTP handlers to the domain services.
type Server struct {
	projects      *project.Service
	albums        *album.Service
	viewers       *viewer.Service
	viewerBaseURL string
	logger        *slog.Logger
}

// NewServer creates the HTTP server.
func NewServer(projects *project.Service, albums *album.Service, viewers *viewer.Service, viewerBaseURL string, logger *slog.Logger) *Server {
	return &Server{
		projects:      projects,
		albums:        albums,
		viewers:       viewers,
		viewerBaseURL: strings.TrimRight(viewerBaseURL, "/"),
		logger:        logger,
	}
}

// Router builds the route tree. The owner API sits behind authMiddleware;
// the viewer surface is public.
func (s *Server) Router(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/a/{slug}", func(r chi.Router) {
		r.Get("/", s.handleViewerAlbum)
		r.Post("/sessions", s.handleCreateSession)
		r.Post("/selections", s.handleSubmitSelections)
	})

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Route("/api", func(r chi.Router) {
			r.Post("/projects", s.handleCreateProject)
			r.Get("/projects", s.handleListProjects)
			r.Get("/projects/{id}", s.handleGetProject)
			r.Patch("/projects/{id}", s.handleRenameProject)
			r.Post("/projects/{id}/albums", s.handleCreateAlbum)

			r.Get("/albums/{id}", s.handleGetAlbum)
			r.Delete("/albums/{id}", s.handleDeleteAlbum)
			r.Post("/albums/{id}/items", s.handleUploadItem)
			r.Delete("/albums/{id}/items/{itemID}", s.handleDeleteItem)
			r.Get("/albums/{id}/selections/summary", s.handleSelectionSummary)
			r.Post("/albums/{id}/finalize", s.handleFinalize)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- owner API: projects ---

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	proj, err := s.projects.Create(r.Context(), ownerID, req.Name)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	summaries, err := s.projects.List(r.Context(), ownerID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if summaries == nil {
		summaries = []project.Summary{}
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	proj, err := s.projects.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proj)
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.projects.Rename(r.Context(), ownerID, chi.URLParam(r, "id"), req.Name); err != nil {
		s.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- owner API: albums ---

type albumResponse struct {
	album.Album
	ShareURL string `json:"share_url"`
}

func (s *Server) shareURL(slug string) string {
	return s.viewerBaseURL + "/a/" + slug
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	var req struct {
		Title          string `json:"title"`
		SelectionLimit int    `json:"selection_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	alb, err := s.albums.Create(r.Context(), ownerID, chi.URLParam(r, "id"), req.Title, req.SelectionLimit)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, albumResponse{Album: *alb, ShareURL: s.shareURL(alb.Slug)})
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	detail, err := s.albums.GetDetail(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Album    album.Album  `json:"album"`
		Items    []album.Item `json:"items"`
		ShareURL string       `json:"share_url"`
	}{
		Album:    detail.Album,
		Items:    detail.Items,
		ShareURL: s.shareURL(detail.Album.Slug),
	})
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	if err := s.albums.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		s.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	kindStr := r.FormValue("kind")
	if kindStr == "" {
		kindStr = string(album.KindImage)
	}
	kind, err := album.ParseKind(kindStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown kind")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := s.albums.UploadItem(r.Context(), ownerID, chi.URLParam(r, "id"), kind, header.Filename, contentType, header.Size, file)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	deleted, err := s.albums.DeleteItem(r.Context(), ownerID, chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectionSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	counts, err := s.albums.SelectionSummary(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if counts == nil {
		counts = []album.PickCount{}
	}
	respondJSON(w, http.StatusOK, counts)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	var req struct {
		ItemIDs []string `json:"item_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	final, err := s.albums.Finalize(r.Context(), ownerID, chi.URLParam(r, "id"), req.ItemIDs)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, albumResponse{Album: *final, ShareURL: s.shareURL(final.Slug)})
}

// --- public viewer API ---

func (s *Server) handleViewerAlbum(w http.ResponseWriter, r *http.Request) {
	view, err := s.viewers.Album(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	key, err := s.viewers.CreateSession(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		SessionKey string `json:"session_key"`
	}{SessionKey: key})
}

func (s *Server) handleSubmitSelections(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionKey string   `json:"session_key"`
		ItemIDs    []string `json:"item_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := s.viewers.SubmitSelections(r.Context(), chi.URLParam(r, "slug"), req.SessionKey, req.ItemIDs)
	if err != nil {
		s.logger.Error("selection submit failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, result)
}

// --- helpers ---

// respondDomainError maps domain sentinels to HTTP statuses. Ownership
// misses read as not-found so the API never confirms a foreign resource
// exists.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, album.ErrAlbumNotFound),
		errors.Is(err, album.ErrUnauthorized),
		errors.Is(err, viewer.ErrAlbumNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, album.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, album.ErrAlbumFrozen):
		respondError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
