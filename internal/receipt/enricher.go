package receipt

import (
	"context"
	"fmt"
	"receipts/internal/pkg/airtable"
	"receipts/internal/pkg/github"
	"strconv"
	"strings"
	"time"
)

// Airtable field names read by the enricher.
const (
	fieldPullRequest    = "Pull Request"
	fieldEmail          = "Email"
	fieldGitHubUsername = "GitHub Username"
	fieldName           = "Name"
	fieldCity           = "City"
	fieldState          = "State or Province"
	fieldCountry        = "Country"
	fieldAge            = "Age (years)"
)

const (
	imageURLFormat = "https://github.com/hackclub/sprig/blob/main/games/img/%s.png?raw=true"
	playURLFormat  = "https://sprig.hackclub.com/gallery/%s"
	avatarURLFmt   = "https://github.com/%s.png"
)

// FileLister lists the paths a pull request changes.
type FileLister interface {
	GetPullRequestFiles(ctx context.Context, ref github.PullRequestRef) ([]string, error)
}

type Options struct {
	GrantType string
	Location  *time.Location
	Questions []Question
}

// Enricher turns raw Airtable records into receipts.
type Enricher struct {
	files     FileLister
	grantType string
	location  *time.Location
	questions []Question
}

func NewEnricher(files FileLister, opts Options) *Enricher {
	if opts.Questions == nil {
		opts.Questions = DefaultQuestions()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Enricher{
		files:     files,
		grantType: opts.GrantType,
		location:  opts.Location,
		questions: opts.Questions,
	}
}

// Enrich resolves the record's pull request and fills every receipt field.
// Missing fields become empty strings; an unparsable pull request URL, a failed
// GitHub call or an unparsable creation time fail the record.
func (e *Enricher) Enrich(ctx context.Context, record airtable.Record) (*Receipt, error) {
	fields := record.Fields

	prURL := fieldString(fields, fieldPullRequest)
	ref, err := github.ParsePullRequestURL(prURL)
	if err != nil {
		return nil, err
	}

	// checked before GitHub so a bad record does not spend the rate limit every pass
	localTime, err := LocalizeTimestamp(record.CreatedTime, e.location)
	if err != nil {
		return nil, err
	}

	files, err := e.files.GetPullRequestFiles(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", ref, err)
	}

	projectName, _ := github.ExtractProjectName(files)

	avatarURL := ""
	if gh := fieldString(fields, fieldGitHubUsername); gh != "" {
		avatarURL = fmt.Sprintf(avatarURLFmt, gh)
	}

	qa := make([]QuestionAnswer, 0, len(e.questions))
	for _, q := range e.questions {
		qa = append(qa, QuestionAnswer{Question: q.Label, Answer: fieldString(fields, q.Field)})
	}

	return &Receipt{
		RecordID:    record.ID,
		GrantType:   e.grantType,
		DateTime:    record.CreatedTime,
		LocalTime:   localTime,
		Name:        fieldString(fields, fieldName),
		AvatarURL:   avatarURL,
		City:        fieldString(fields, fieldCity),
		State:       fieldString(fields, fieldState),
		Country:     fieldString(fields, fieldCountry),
		Age:         fieldString(fields, fieldAge),
		QA:          qa,
		ProjectInfo: projectInfo(projectName, prURL, fieldString(fields, fieldEmail)),
	}, nil
}

// projectInfo leaves the name-derived links empty when no project file was found.
func projectInfo(name, prURL, email string) ProjectInfo {
	info := ProjectInfo{Name: name}

	playURL := ""
	if name != "" {
		info.ImageURL = fmt.Sprintf(imageURLFormat, name)
		playURL = fmt.Sprintf(playURLFormat, name)
	}

	info.QRCodes = []QRTarget{
		{Label: "Play Game", URL: playURL},
		{Label: "Pull Request", URL: prURL},
		{Label: "Email", URL: "mailto:" + email},
	}
	return info
}

// fieldString renders an Airtable cell as text, "" when missing.
func fieldString(fields map[string]any, key string) string {
	return stringify(fields[key])
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		// collaborator and attachment cells
		for _, key := range []string{"name", "email", "url"} {
			if s, ok := val[key].(string); ok {
				return s
			}
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}
