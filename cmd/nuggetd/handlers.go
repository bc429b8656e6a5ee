package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nuggets/internal/event"
	"nuggets/internal/media"
	"nuggets/internal/nugget"
	"nuggets/internal/tag"
)

type Server struct {
	repo       nugget.Repository
	normalizer *nugget.Normalizer
	tags       *tag.Service
	publisher  event.Publisher // nil disables publishing
	logger     *log.Logger
}

func (s *Server) Router(r *mux.Router) *mux.Router {
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/nuggets", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/nuggets/{id}", s.handleEdit).Methods(http.MethodPut)
	r.HandleFunc("/nuggets/{id}/links", s.handleDetectedLinks).Methods(http.MethodGet)
	r.HandleFunc("/tags", s.handleResolveTag).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type createResponse struct {
	Nugget            *nugget.Article `json:"nugget"`
	HasEmptyTagsError bool            `json:"hasEmptyTagsError"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in nugget.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	normalized, err := s.normalizer.Normalize(r.Context(), in, nugget.ModeCreate)
	if err != nil {
		s.logger.Printf("normalize failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "normalization failed")
		return
	}

	if normalized.HasEmptyTagsError {
		s.writeError(w, http.StatusUnprocessableEntity, "at least one tag is required")
		return
	}

	// Free-text tags need persistent identities before the article lands.
	results := s.tags.CreateOrResolveMany(r.Context(), normalized.Tags, tag.Options{})
	for name, err := range results.Errors {
		s.logger.Printf("tag resolution failed for %q: %v", name, err)
	}

	created, err := s.repo.Create(r.Context(), &normalized)
	if err != nil {
		s.logger.Printf("create failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save nugget")
		return
	}

	s.publish(r, string(nugget.ModeCreate), created)
	s.writeJSON(w, http.StatusCreated, createResponse{Nugget: created})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid nugget id")
		return
	}

	var in nugget.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := s.repo.FindByID(r.Context(), id)
	if errors.Is(err, nugget.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "nugget not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load nugget")
		return
	}

	// Seed the merge inputs from the persisted snapshot when the client did
	// not send them.
	if in.ExistingImages == nil {
		in.ExistingImages = existing.Images
	}
	if in.ExistingMediaIDs == nil {
		in.ExistingMediaIDs = existing.MediaIDs
	}
	if in.ExistingSupportingMedia == nil {
		in.ExistingSupportingMedia = existing.SupportingMedia
	}

	normalized, err := s.normalizer.Normalize(r.Context(), in, nugget.ModeEdit)
	if err != nil {
		s.logger.Printf("normalize failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "normalization failed")
		return
	}

	results := s.tags.CreateOrResolveMany(r.Context(), normalized.Tags, tag.Options{})
	for name, err := range results.Errors {
		s.logger.Printf("tag resolution failed for %q: %v", name, err)
	}

	updated, err := s.repo.Update(r.Context(), id, &normalized)
	if errors.Is(err, nugget.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "nugget not found")
		return
	}
	if err != nil {
		s.logger.Printf("update failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save nugget")
		return
	}

	s.publish(r, string(nugget.ModeEdit), updated)
	s.writeJSON(w, http.StatusOK, createResponse{Nugget: updated})
}

type detectedLinksResponse struct {
	Links  []media.ExtractedURL    `json:"links"`
	Counts map[media.URLSource]int `json:"counts"`
}

// handleDetectedLinks backs the "Detected Links" diagnostics panel: every URL
// the stored document carries, minus those already promoted to external links.
func (s *Server) handleDetectedLinks(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid nugget id")
		return
	}

	a, err := s.repo.FindByID(r.Context(), id)
	if errors.Is(err, nugget.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "nugget not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load nugget")
		return
	}

	extracted := media.ExtractAllURLs(&a.Article)
	filtered := media.FilterExistingExternalLinks(extracted, a.ExternalLinks)

	s.writeJSON(w, http.StatusOK, detectedLinksResponse{
		Links:  filtered,
		Counts: media.URLCountsBySource(extracted),
	})
}

type resolveTagRequest struct {
	Name       string     `json:"name"`
	Status     tag.Status `json:"status,omitempty"`
	IsOfficial *bool      `json:"isOfficial,omitempty"`
}

func (s *Server) handleResolveTag(w http.ResponseWriter, r *http.Request) {
	var req resolveTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := s.tags.CreateOrResolve(r.Context(), req.Name, tag.Options{
		Status:     req.Status,
		IsOfficial: req.IsOfficial,
	})
	if errors.Is(err, tag.ErrEmptyName) {
		s.writeError(w, http.StatusBadRequest, "tag name is required")
		return
	}
	if err != nil {
		s.logger.Printf("tag resolution failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to resolve tag")
		return
	}

	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) publish(r *http.Request, mode string, a *nugget.Article) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNuggetNormalized(r.Context(), mode, a); err != nil {
		s.logger.Printf("failed publishing nugget %s: %v", a.ID.Hex(), err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("failed encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
