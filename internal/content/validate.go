package content

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/presswork/internal/models"
)

var visibilityValues = func() []interface{} {
	out := make([]interface{}, len(models.Visibilities))
	for i, v := range models.Visibilities {
		out[i] = v
	}
	return out
}()

// ValidateMetadata checks the required fields of a frontmatter block.
func ValidateMetadata(m models.Metadata) error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Date, validation.Required, validation.By(calendarDate)),
		validation.Field(&m.Visibility, validation.Required, validation.In(visibilityValues...)),
		validation.Field(&m.CoverWidth, validation.Min(0)),
		validation.Field(&m.CoverHeight, validation.Min(0)),
	)
}

func calendarDate(value interface{}) error {
	s, _ := value.(string)
	if _, ok := models.ParseDate(s); !ok {
		return errors.New("must be a calendar date (YYYY-MM-DD)")
	}
	return nil
}
