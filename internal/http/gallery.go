package http

import (
	"fmt"
	"net/http"
	"path"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/gallery"
)

// maxPhotoUploadBytes caps gallery uploads at 10 MiB.
const maxPhotoUploadBytes = 10 << 20

func (s *Server) withURLs(photos []gallery.Photo) []gallery.Photo {
	for i := range photos {
		photos[i].URL = s.Blobs.URL(photos[i].Key)
	}
	return photos
}

func (s *Server) ListPhotosHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := s.Gallery.Photos()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, s.withURLs(photos))
	}
}

// UploadPhotoHandler stores the image bytes in blob storage and records the
// metadata. Any claimed member may upload.
func (s *Server) UploadPhotoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if caller == "" {
			respondError(w, fmt.Errorf("%w: authentication required", club.ErrForbidden))
			return
		}
		member, err := s.Store.GetMember(caller)
		if err != nil {
			respondError(w, err)
			return
		}

		if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
			respondError(w, fmt.Errorf("%w: invalid multipart form", club.ErrInvalidInput))
			return
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			respondError(w, fmt.Errorf("%w: missing photo file", club.ErrInvalidInput))
			return
		}
		defer file.Close()

		key := fmt.Sprintf("photos/%s%s", uuid.New().String(), path.Ext(header.Filename))
		contentType := header.Header.Get("Content-Type")
		if err := s.Blobs.Upload(r.Context(), key, contentType, file); err != nil {
			respondError(w, err)
			return
		}

		photo, err := s.Gallery.AddPhoto(key, caller, member.Name)
		if err != nil {
			// Orphaned blobs are cheaper than lost metadata; clean up
			// best effort.
			if delErr := s.Blobs.Delete(r.Context(), key); delErr != nil {
				log.Error("Failed to clean up blob after metadata failure", "error", delErr, "key", key)
			}
			respondError(w, err)
			return
		}
		photo.URL = s.Blobs.URL(photo.Key)
		respondJSON(w, http.StatusCreated, photo)
	}
}

// DeletePhotoHandler removes a photo. Only the uploader or an admin may
// delete.
func (s *Server) DeletePhotoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		key := r.PathValue("key")

		photo, err := s.Gallery.GetPhoto(key)
		if err != nil {
			respondError(w, err)
			return
		}
		if caller != photo.Uploader && !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only the uploader or an admin may delete a photo", club.ErrForbidden))
			return
		}

		if err := s.Gallery.DeletePhoto(key); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Blobs.Delete(r.Context(), key); err != nil {
			log.Error("Failed to delete blob", "error", err, "key", key)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) BannerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := s.Gallery.Banner()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, s.withURLs(photos))
	}
}

func (s *Server) AddToBannerHandler() http.HandlerFunc {
	type request struct {
		PhotoKey string `json:"photo_key"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may manage the banner", club.ErrForbidden))
			return
		}
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Gallery.AddToBanner(req.PhotoKey); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) RemoveFromBannerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may manage the banner", club.ErrForbidden))
			return
		}
		if err := s.Gallery.RemoveFromBanner(r.PathValue("key")); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ReorderBannerHandler() http.HandlerFunc {
	type request struct {
		PhotoKeys []string `json:"photo_keys"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller := principalFromContext(r)
		if !s.Access.IsAdmin(caller) {
			respondError(w, fmt.Errorf("%w: only admins may manage the banner", club.ErrForbidden))
			return
		}
		var req request
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		if err := s.Gallery.ReorderBanner(req.PhotoKeys); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
