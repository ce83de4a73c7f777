// Package forms validates user input before anything reaches the store.
// Every entry point trims its fields first, so whitespace-only values count
// as missing.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is a user-facing validation failure for one field.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

// Question is the single-question form.
type Question struct {
	Topic    string `json:"topic" validate:"required"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Profile is the profile edit form. Age 0 means "not given".
type Profile struct {
	Name      string `json:"name" validate:"required"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
	ClassName string `json:"className"`
	Email     string `json:"email" validate:"required"`
}

// BulkImport is the bulk-import form before parsing.
type BulkImport struct {
	Topic string `json:"topic" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// messages maps "<form>.<json field>.<tag>" to the text shown to the user.
var messages = map[string]string{
	"Question.topic.required":    "Please select a topic",
	"Question.question.required": "Please enter a question",
	"Question.answer.required":   "Please enter an answer",
	"Profile.name.required":      "Please enter your name",
	"Profile.email.required":     "Please enter your email",
	"Profile.age.gte":            "Please enter a valid age",
	"Profile.age.lte":            "Please enter a valid age",
	"BulkImport.topic.required":  "Please select or enter a topic name",
	"BulkImport.text.required":   "Please enter some questions and answers",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Normalize trims every field in place.
func (q *Question) Normalize() {
	q.Topic = strings.TrimSpace(q.Topic)
	q.Question = strings.TrimSpace(q.Question)
	q.Answer = strings.TrimSpace(q.Answer)
}

func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ClassName = strings.TrimSpace(p.ClassName)
	p.Email = strings.TrimSpace(p.Email)
}

// Normalize trims the topic only; the text is handed to the parser as is.
func (b *BulkImport) Normalize() {
	b.Topic = strings.TrimSpace(b.Topic)
}

// ValidateQuestion trims q and returns the first failing field, or nil.
func ValidateQuestion(q *Question) error {
	q.Normalize()
	return check("Question", q)
}

func ValidateProfile(p *Profile) error {
	p.Normalize()
	return check("Profile", p)
}

func ValidateBulkImport(b *BulkImport) error {
	b.Normalize()
	if err := check("BulkImport", b); err != nil {
		return err
	}
	if strings.TrimSpace(b.Text) == "" {
		return &Error{Field: "text", Message: messages["BulkImport.text.required"]}
	}
	return nil
}

// check runs the struct validator and converts the first failure, in field
// order, to an *Error.
func check(form string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	msg, ok := messages[form+"."+fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = "Invalid " + fe.Field()
	}
	return &Error{Field: fe.Field(), Message: msg}
}

// Message returns the user-facing text of a validation error, or fallback
// for anything else.
func Message(err error, fallback string) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return fallback
}
