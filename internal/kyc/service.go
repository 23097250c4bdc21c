// Package kyc handles the compliance screen: uploading identity documents
// and listing their review status. Files are checked locally for type and
// size before the bytes go anywhere.
package kyc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
)

// MaxFileSize caps document uploads at 5 MB, matching the gateway limit.
const MaxFileSize = 5 << 20

// allowedExtensions are the file formats the review pipeline accepts.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// Gateway is the slice of the API client the compliance screen needs.
type Gateway interface {
	UploadDocument(ctx context.Context, docType, fileName string, content io.Reader) (domain.Document, error)
	Documents(ctx context.Context) ([]domain.Document, error)
}

// Service runs the compliance flows.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
}

// NewService creates a compliance service.
func NewService(gw Gateway, logger *slog.Logger) *Service {
	return &Service{
		gateway: gw,
		logger:  logger,
	}
}

// Upload submits a document for review. The size is taken from the caller
// because the content may be a stream whose length the screen already knows.
func (s *Service) Upload(ctx context.Context, docType, fileName string, size int64, content io.Reader) (domain.Document, error) {
	if !domain.IsValidDocumentType(docType) {
		return domain.Document{}, apperrors.Validation("select a document type")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return domain.Document{}, apperrors.Validation("file must be a JPG, PNG, or PDF")
	}

	if size <= 0 {
		return domain.Document{}, apperrors.Validation("file is empty")
	}
	if size > MaxFileSize {
		return domain.Document{}, apperrors.Validation("file must be smaller than 5 MB")
	}

	doc, err := s.gateway.UploadDocument(ctx, docType, fileName, io.LimitReader(content, MaxFileSize))
	if err != nil {
		return domain.Document{}, err
	}

	s.logger.InfoContext(ctx, "compliance document uploaded",
		slog.String("document_id", doc.ID),
		slog.String("type", doc.Type),
	)
	return doc, nil
}

// Documents lists the user's submitted documents.
func (s *Service) Documents(ctx context.Context) ([]domain.Document, error) {
	return s.gateway.Documents(ctx)
}

// StatusSummary condenses a document list into the line shown under the
// profile header: the worst outstanding state wins.
func StatusSummary(docs []domain.Document) string {
	if len(docs) == 0 {
		return "No documents submitted"
	}

	var pending, rejected int
	for _, d := range docs {
		switch d.Status {
		case domain.DocumentSubmitted:
			pending++
		case domain.DocumentRejected:
			rejected++
		}
	}

	switch {
	case rejected > 0:
		return fmt.Sprintf("%d document(s) rejected, action needed", rejected)
	case pending > 0:
		return fmt.Sprintf("%d document(s) under review", pending)
	default:
		return "All documents approved"
	}
}
