package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func TestStructValid(t *testing.T) {
	if err := Struct(login{Email: "a@example.com", Password: "pw"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestStructInvalid(t *testing.T) {
	err := Struct(login{Email: "not-an-email"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatal("validator errors should stay reachable via errors.As")
	}

	tags := FailedTags(err)
	if tags["Email"] != "email" {
		t.Errorf("Email tag = %q, want email", tags["Email"])
	}
	if tags["Password"] != "required" {
		t.Errorf("Password tag = %q, want required", tags["Password"])
	}
	if !strings.Contains(err.Error(), "login.Email failed email") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestFailedTagsOnOtherErrors(t *testing.T) {
	if FailedTags(errors.New("boom")) != nil {
		t.Error("non-validation errors should have no tags")
	}
}
