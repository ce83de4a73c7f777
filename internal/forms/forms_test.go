package forms

import (
	"errors"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name  string
		in    Question
		field string
		msg   string
	}{
		{name: "valid", in: Question{Topic: "Science", Question: "q", Answer: "a"}},
		{name: "missing topic", in: Question{Question: "q", Answer: "a"}, field: "topic", msg: "Please select a topic"},
		{name: "blank question", in: Question{Topic: "Art", Question: "   ", Answer: "a"}, field: "question", msg: "Please enter a question"},
		{name: "blank answer", in: Question{Topic: "Art", Question: "q", Answer: "\n\t"}, field: "answer", msg: "Please enter an answer"},
		{name: "first failing field wins", in: Question{}, field: "topic", msg: "Please select a topic"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			err := ValidateQuestion(&in)
			assertFormError(t, err, tc.field, tc.msg)
		})
	}
}

func TestValidateQuestionTrims(t *testing.T) {
	q := Question{Topic: " Science ", Question: " What? ", Answer: " That. "}
	if err := ValidateQuestion(&q); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if q.Topic != "Science" || q.Question != "What?" || q.Answer != "That." {
		t.Fatalf("expected trimmed fields, got %+v", q)
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name  string
		in    Profile
		field string
		msg   string
	}{
		{name: "valid", in: Profile{Name: "Dipak", Age: 21, Email: "d@example.com"}},
		{name: "class is optional", in: Profile{Name: "Dipak", Email: "d@example.com"}},
		{name: "missing name", in: Profile{Email: "d@example.com"}, field: "name", msg: "Please enter your name"},
		{name: "missing email", in: Profile{Name: "Dipak", Email: "  "}, field: "email", msg: "Please enter your email"},
		{name: "negative age", in: Profile{Name: "Dipak", Age: -1, Email: "d@example.com"}, field: "age", msg: "Please enter a valid age"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			assertFormError(t, ValidateProfile(&in), tc.field, tc.msg)
		})
	}
}

func TestValidateBulkImport(t *testing.T) {
	in := BulkImport{Topic: "", Text: "Q1: a\nA1: b"}
	assertFormError(t, ValidateBulkImport(&in), "topic", "Please select or enter a topic name")

	in = BulkImport{Topic: "", Text: ""}
	assertFormError(t, ValidateBulkImport(&in), "topic", "Please select or enter a topic name")

	in = BulkImport{Topic: "  ", Text: " \n "}
	assertFormError(t, ValidateBulkImport(&in), "topic", "Please select or enter a topic name")

	in = BulkImport{Topic: "General", Text: " \n "}
	assertFormError(t, ValidateBulkImport(&in), "text", "Please enter some questions and answers")

	in = BulkImport{Topic: " General ", Text: "Q1: a"}
	if err := ValidateBulkImport(&in); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if in.Topic != "General" {
		t.Fatalf("expected trimmed topic, got %q", in.Topic)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(&Error{Field: "x", Message: "boom"}, "fallback"); got != "boom" {
		t.Fatalf("expected form message, got %q", got)
	}
	if got := Message(errors.New("sql: database is closed"), "Failed to save question"); got != "Failed to save question" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func assertFormError(t *testing.T, err error, field, msg string) {
	t.Helper()
	if field == "" {
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		return
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fe.Field != field || fe.Message != msg {
		t.Fatalf("expected %s/%q, got %s/%q", field, msg, fe.Field, fe.Message)
	}
}
