// Package archive stores the raw resume documents candidates upload. The
// engine only needs the extracted text; the original file is kept so a
// reviewer can pull it up next to the transcript.
package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config carries the Cloudinary credentials and target folder.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether credentials are present. Archival is optional:
// with no credentials the engine runs without it.
func (c Config) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Store archives resume documents in Cloudinary. A nil *Store is a no-op
// archiver, mirroring how the lifecycle publisher degrades without a broker.
type Store struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New builds an archive store, or nil when credentials are absent.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}

	return &Store{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "archive").Logger(),
	}, nil
}

// SaveResume uploads the document under the candidate's id and returns a
// secure URL. Returns "" with no error when archival is disabled.
func (s *Store) SaveResume(ctx context.Context, candidateID, filename string, reader io.Reader) (string, error) {
	if s == nil {
		return "", nil
	}

	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     resumePublicID(candidateID, filename),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("archive resume: %w", err)
	}

	s.logger.Info().
		Str("candidate_id", candidateID).
		Str("public_id", result.PublicID).
		Msg("resume archived")

	return result.SecureURL, nil
}

func resumePublicID(candidateID, filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "resume"
	}

	return fmt.Sprintf("%s-%s-%d", candidateID, base, time.Now().Unix())
}
