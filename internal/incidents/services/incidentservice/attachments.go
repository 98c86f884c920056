package incidentservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	repo "github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
)

type FileStore interface {
	Save(src io.Reader, originalName string) (string, error)
	Remove(path string) error
}

type Uploads struct {
	store       FileStore
	maxFiles    int
	maxFileSize int64
}

func NewUploads(store FileStore, cfg config.Uploads) Uploads {
	return Uploads{
		store:       store,
		maxFiles:    cfg.MaxFiles,
		maxFileSize: cfg.MaxFileSize,
	}
}

var allowedMIME = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// AddAttachments validates the whole batch before a single byte reaches
// disk: any bad file rejects the request and nothing is persisted.
func (is *IncidentService) AddAttachments(ctx context.Context, actor policy.Actor, incidentID int64, files []UploadFile) ([]models.Attachment, error) {
	inc, err := is.incidentRepo.GetByID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get incident error: %w", err)
	}

	if !policy.Allow(actor, policy.AttachmentAdd, inc) {
		return nil, ErrNotAllowed
	}

	if len(files) == 0 {
		return nil, models.Invalid("no files uploaded")
	}

	if len(files) > is.uploads.maxFiles {
		return nil, models.Invalid(fmt.Sprintf("too many files, maximum is %d", is.uploads.maxFiles))
	}

	for _, f := range files {
		if err := is.validateFile(f); err != nil {
			return nil, err
		}
	}

	saved := make([]string, 0, len(files))

	cleanup := func() {
		for _, p := range saved {
			if err := is.uploads.store.Remove(p); err != nil {
				is.lg.Errorf("cleanup attachment file error: %s", err.Error())
			}
		}
	}

	atts := make([]models.Attachment, 0, len(files))

	for _, f := range files {
		src, err := f.Open()
		if err != nil {
			cleanup()

			return nil, fmt.Errorf("open upload error: %w", err)
		}

		path, err := is.uploads.store.Save(src, f.Name)
		src.Close()

		if err != nil {
			cleanup()

			return nil, fmt.Errorf("save upload error: %w", err)
		}

		saved = append(saved, path)
		atts = append(atts, models.Attachment{IncidentID: incidentID, FileURL: path})
	}

	if err := is.incidentRepo.AddAttachments(ctx, atts); err != nil {
		cleanup()

		return nil, fmt.Errorf("add attachments error: %w", err)
	}

	is.lg.Infof("uploaded %d attachments to incident %d", len(atts), incidentID)

	return atts, nil
}

func (is *IncidentService) validateFile(f UploadFile) error {
	if f.Size > is.uploads.maxFileSize {
		return models.Invalid("file too large")
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open upload error: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)

	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read upload error: %w", err)
	}

	if !allowedMIME[http.DetectContentType(head[:n])] {
		return models.Invalid("unsupported file type")
	}

	return nil
}
