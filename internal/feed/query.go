package feed

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/justestif/moodmuse/internal/model"
)

// DefaultLanguage is used when a query names no language.
const DefaultLanguage = "en"

// Query describes what to recommend. At least one of Mood and Text is set.
type Query struct {
	Mood        string            `json:"mood" validate:"required_without=Text"`
	Text        string            `json:"text" validate:"required_without=Mood"`
	ContentType model.ContentType `json:"content_type" validate:"oneof=movies series songs"`
	Language    string            `json:"language" validate:"required,max=8"`
	Page        int               `json:"page" validate:"gte=1"`
}

// ValidationError is an invalid query caught before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MissingMoodMessage is shown when neither a mood nor a description was given.
const MissingMoodMessage = "Please select a mood or enter text describing your mood"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// NewQuery normalizes and validates a page-1 query. Whitespace-only mood or
// text counts as empty; an empty content type means movies.
func NewQuery(mood string, contentType model.ContentType, language, text string) (Query, error) {
	q := Query{
		Mood:        strings.TrimSpace(mood),
		Text:        strings.TrimSpace(text),
		ContentType: model.ContentType(strings.ToLower(strings.TrimSpace(string(contentType)))),
		Language:    strings.ToLower(strings.TrimSpace(language)),
		Page:        1,
	}
	if q.ContentType == "" {
		q.ContentType = model.Movies
	}
	if q.Language == "" {
		q.Language = DefaultLanguage
	}

	if err := getValidator().Struct(q); err != nil {
		return Query{}, toValidationError(err)
	}
	return q, nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "query", Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Mood", "Text":
		return &ValidationError{Field: "mood", Message: MissingMoodMessage}
	case "ContentType":
		return &ValidationError{Field: "content_type", Message: "Content type must be one of movies, series or songs"}
	case "Language":
		return &ValidationError{Field: "language", Message: "Please select a language"}
	default:
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
	}
}
