package gallery

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/club"
)

// New creates a new GalleryStore.
func New(db *sql.DB) GalleryStore {
	return &store{
		db: db,
	}
}

func (s *store) AddPhoto(key, uploader, uploaderName string) (*Photo, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: photo key must not be empty", club.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Photo{
		Key:          key,
		Uploader:     uploader,
		UploaderName: uploaderName,
		UploadedAt:   time.Now().Unix(),
	}
	_, err := s.db.Exec(
		"INSERT INTO photos (key, uploader, uploader_name, uploaded_at) VALUES (?, ?, ?, ?)",
		p.Key, p.Uploader, p.UploaderName, p.UploadedAt,
	)
	if err != nil {
		log.Error("Failed to insert photo", "error", err, "key", key)
		return nil, err
	}
	log.Info("Photo added to gallery", "key", key, "uploader", uploader)
	return p, nil
}

func scanPhoto(scanner interface{ Scan(...any) error }) (*Photo, error) {
	var p Photo
	err := scanner.Scan(&p.Key, &p.Uploader, &p.UploaderName, &p.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *store) GetPhoto(key string) (*Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT key, uploader, uploader_name, uploaded_at FROM photos WHERE key = ?", key)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: photo %s", club.ErrNotFound, key)
	}
	return p, err
}

func (s *store) listPhotos(query string, args ...any) ([]Photo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			log.Error("Failed to scan photo row", "error", err)
			continue
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func (s *store) Photos() ([]Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPhotos("SELECT key, uploader, uploader_name, uploaded_at FROM photos ORDER BY uploaded_at DESC")
}

// DeletePhoto removes a photo's metadata. Banner membership is removed by
// the foreign key cascade; deleting the blob is the caller's concern.
func (s *store) DeletePhoto(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM photos WHERE key = ?", key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: photo %s", club.ErrNotFound, key)
	}
	log.Info("Photo deleted", "key", key)
	return nil
}

func (s *store) Banner() ([]Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listPhotos(`
		SELECT p.key, p.uploader, p.uploader_name, p.uploaded_at
		FROM banner_photos b
		JOIN photos p ON p.key = b.photo_key
		ORDER BY b.position`)
}

// AddToBanner appends a gallery photo to the end of the banner carousel.
func (s *store) AddToBanner(photoKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM photos WHERE key = ?)", photoKey).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: photo %s", club.ErrNotFound, photoKey)
	}
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM banner_photos WHERE photo_key = ?)", photoKey).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: photo %s is already on the banner", club.ErrConflict, photoKey)
	}

	_, err := s.db.Exec(
		"INSERT INTO banner_photos (photo_key, position) SELECT ?, COALESCE(MAX(position), 0) + 1 FROM banner_photos",
		photoKey,
	)
	return err
}

func (s *store) RemoveFromBanner(photoKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM banner_photos WHERE photo_key = ?", photoKey)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: photo %s is not on the banner", club.ErrNotFound, photoKey)
	}
	return nil
}

// ReorderBanner replaces the banner order. The given keys must be exactly
// the current banner membership, in the desired order.
func (s *store) ReorderBanner(photoKeys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT photo_key FROM banner_photos")
	if err != nil {
		return err
	}
	current := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return err
		}
		current[key] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(photoKeys) != len(current) {
		return fmt.Errorf("%w: reorder must list all %d banner photos", club.ErrInvalidInput, len(current))
	}
	seen := make(map[string]bool, len(photoKeys))
	for _, key := range photoKeys {
		if seen[key] {
			return fmt.Errorf("%w: duplicate photo %s in reorder", club.ErrInvalidInput, key)
		}
		if !current[key] {
			return fmt.Errorf("%w: photo %s is not on the banner", club.ErrInvalidInput, key)
		}
		seen[key] = true
	}

	for i, key := range photoKeys {
		if _, err := tx.Exec("UPDATE banner_photos SET position = ? WHERE photo_key = ?", i+1, key); err != nil {
			return err
		}
	}
	return tx.Commit()
}
