package http

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// userIDPattern keeps ids usable as a single path segment: no separators,
// and no leading dot so "." and ".." never pass.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,127}$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDPattern.MatchString(fl.Field().String())
	})
	return v
}

type templateRequest struct {
	Template string `json:"template" validate:"required,oneof=modern classic minimalist creative"`
}

type textRequest struct {
	Text string `json:"text" validate:"max=500"`
}

type entryChangeRequest struct {
	Fields  map[string]string `json:"fields" validate:"omitempty,max=20,dive,keys,required,max=40,endkeys,max=5000"`
	Current *bool             `json:"current"`
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) (field, message string) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "", err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return verrs[0].Field(), strings.Join(parts, "; ")
}
