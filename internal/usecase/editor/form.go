package editor

import (
	"reflect"
	"strings"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/usecase/content"

	"github.com/go-playground/validator/v10"
)

// MaxTitleLength is counted in characters, not bytes.
const MaxTitleLength = 500

// Form is the editor buffer: one field per editable article column.
// Field order is validation order.
type Form struct {
	TitleEN       string          `json:"title_en" validate:"required,max=500"`
	TitleTA       string          `json:"title_ta" validate:"required,max=500"`
	ContentEN     string          `json:"content_en" validate:"required"`
	ContentTA     string          `json:"content_ta" validate:"required"`
	Category      entity.Category `json:"category" validate:"required,category"`
	PartyID       *string         `json:"party_id"`
	FeaturedImage string          `json:"featured_image" validate:"omitempty,link"`
	IsBreaking    bool            `json:"is_breaking"`
	IsFeatured    bool            `json:"is_featured"`
	Status        entity.Status   `json:"status" validate:"required,status"`
}

// DefaultForm is the buffer of a fresh create dialog.
func DefaultForm() Form {
	return Form{
		Category: entity.CategoryGeneral,
		Status:   entity.StatusPublished,
	}
}

// FormFromArticle copies every editable column of a verbatim.
// The id is not part of the form.
func FormFromArticle(a *entity.Article) Form {
	f := Form{
		TitleEN:    a.TitleEN,
		TitleTA:    a.TitleTA,
		ContentEN:  a.ContentEN,
		ContentTA:  a.ContentTA,
		Category:   a.Category,
		IsBreaking: a.IsBreaking,
		IsFeatured: a.IsFeatured,
		Status:     a.Status,
	}
	if a.PartyID != nil {
		id := *a.PartyID
		f.PartyID = &id
	}
	if a.FeaturedImage != nil {
		f.FeaturedImage = *a.FeaturedImage
	}
	return f
}

// Fields converts the form for the content service. Empty party and image
// become null there.
func (f Form) Fields() content.Fields {
	out := content.Fields{
		TitleEN:    f.TitleEN,
		TitleTA:    f.TitleTA,
		ContentEN:  f.ContentEN,
		ContentTA:  f.ContentTA,
		Category:   f.Category,
		PartyID:    f.PartyID,
		IsBreaking: f.IsBreaking,
		IsFeatured: f.IsFeatured,
		Status:     f.Status,
	}
	if f.FeaturedImage != "" {
		img := f.FeaturedImage
		out.FeaturedImage = &img
	}
	return out
}

// Validation is the outcome of validating a Form: either valid, or the
// first failing field.
type Validation struct {
	first *entity.ValidationError
}

// OK reports whether the form passed.
func (v Validation) OK() bool { return v.first == nil }

// Err returns the first failure, or nil.
func (v Validation) Err() *entity.ValidationError { return v.first }

// messages are keyed by "<json field>.<tag>".
var messages = map[string]string{
	"title_en.required":   "English title is required",
	"title_en.max":        "English title must be at most 500 characters",
	"title_ta.required":   "Tamil title is required",
	"title_ta.max":        "Tamil title must be at most 500 characters",
	"content_en.required": "English content is required",
	"content_ta.required": "Tamil content is required",
	"category.required":   "Category is required",
	"category.category":   "Category must be one of elections, government, statements, protests, general",
	"featured_image.link": "Featured image must be an http(s) URL",
	"status.required":     "Status is required",
	"status.status":       "Status must be published or draft",
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return entity.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return entity.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("link", func(fl validator.FieldLevel) bool {
		return entity.ValidateLinkURL("featured_image", fl.Field().String()) == nil
	})
	return v
}

// Validate checks f and reports only the first failing field.
func Validate(f Form) Validation {
	err := validate.Struct(f)
	if err == nil {
		return Validation{}
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return Validation{first: &entity.ValidationError{Field: "form", Message: err.Error()}}
	}
	fe := errs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fe.Field() + " is invalid"
	}
	return Validation{first: &entity.ValidationError{Field: fe.Field(), Message: msg}}
}
