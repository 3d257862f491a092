// Package extractor turns an uploaded resume into a profile guess. It is a
// stateless collaborator: the engine always proceeds with whatever it
// returns, even an all-empty profile.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/swipehire/interview-api/internal/models"
)

const maxDocumentBytes = 10 << 20

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
)

// Extractor guesses name, email and phone from a document payload.
type Extractor struct {
	logger zerolog.Logger
}

// New constructs a document extractor.
func New(logger zerolog.Logger) *Extractor {
	return &Extractor{logger: logger.With().Str("component", "extractor").Logger()}
}

// Extract reads the document, converts it to plain text and guesses the
// profile fields. The returned profile is usable even when err is non-nil;
// a failed conversion degrades to an empty profile.
func (e *Extractor) Extract(filename string, reader io.Reader) (models.Profile, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxDocumentBytes))
	if err != nil {
		return models.Profile{}, fmt.Errorf("read document: %w", err)
	}

	text, err := e.toText(data)
	if err != nil {
		e.logger.Warn().Err(err).Str("filename", filename).Msg("document conversion failed")
		return models.Profile{}, err
	}

	return FromText(text), nil
}

func (e *Extractor) toText(data []byte) (string, error) {
	kind := mimetype.Detect(data)

	switch {
	case kind.Is("text/plain"):
		return string(data), nil
	case kind.Is("application/pdf"),
		kind.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"),
		kind.Is("application/msword"),
		kind.Is("application/rtf"),
		kind.Is("application/vnd.oasis.opendocument.text"):
		res, err := docconv.Convert(bytes.NewReader(data), kind.String(), true)
		if err != nil {
			return "", fmt.Errorf("convert document: %w", err)
		}
		return res.Body, nil
	default:
		return "", fmt.Errorf("unsupported document type %s", kind.String())
	}
}

// FromText guesses the profile fields from plain resume text.
func FromText(text string) models.Profile {
	profile := models.Profile{}

	if email := emailPattern.FindString(text); email != "" {
		profile.Email = email
	}
	if phone := findPhone(text); phone != "" {
		profile.Phone = phone
	}
	profile.Name = findName(text)

	return profile
}

func findPhone(text string) string {
	for _, match := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range match {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		// Phone numbers carry 9..15 digits; shorter or longer runs are
		// dates, ids or other noise.
		if digits >= 9 && digits <= 15 {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// findName takes the first short, digit-free line that is not a contact
// detail. Resume headers almost always start with the candidate's name.
func findName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line, "@0123456789") {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 1 || len(words) > 4 {
			continue
		}
		return line
	}
	return ""
}
