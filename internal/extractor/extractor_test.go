package extractor

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/swipehire/interview-api/internal/models"
)

const sampleResume = `Jane Doe
Senior Software Engineer

Contact: jane.doe@example.com | +1 (555) 123-4567

Experience
2019-2023 Example Corp
`

func TestFromTextGuessesAllFields(t *testing.T) {
	profile := FromText(sampleResume)

	require.Equal(t, "Jane Doe", profile.Name)
	require.Equal(t, "jane.doe@example.com", profile.Email)
	require.Equal(t, "+1 (555) 123-4567", profile.Phone)
}

func TestFromTextEmptyInput(t *testing.T) {
	require.Equal(t, models.Profile{}, FromText(""))
}

func TestFromTextIgnoresShortDigitRuns(t *testing.T) {
	// Year ranges and dates must not be mistaken for phone numbers.
	profile := FromText("Jane Doe\nWorked 2019-2023 at Example Corp\n")

	require.Empty(t, profile.Phone)
	require.Equal(t, "Jane Doe", profile.Name)
}

func TestFromTextNameSkipsContactLines(t *testing.T) {
	text := "jane@example.com\n+1 555 123 4567\nJane Doe\n"

	profile := FromText(text)
	require.Equal(t, "Jane Doe", profile.Name)
}

func TestFromTextNameSkipsLongHeadings(t *testing.T) {
	text := "A very long headline sentence that is clearly not a person name\nJane Doe\n"

	profile := FromText(text)
	require.Equal(t, "Jane Doe", profile.Name)
}

func TestExtractPlainText(t *testing.T) {
	e := New(zerolog.Nop())

	profile, err := e.Extract("resume.txt", strings.NewReader(sampleResume))
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", profile.Name)
	require.Equal(t, "jane.doe@example.com", profile.Email)
}

func TestExtractUnsupportedTypeDegradesToEmptyProfile(t *testing.T) {
	e := New(zerolog.Nop())

	// A PNG header is not a document format the converter handles.
	payload := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 64)
	profile, err := e.Extract("resume.png", strings.NewReader(payload))

	require.Error(t, err)
	require.Equal(t, models.Profile{}, profile)
}
