// pkg/verify/struct.go

package verify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var portSpecRe = regexp.MustCompile(`^\d{1,5}(-\d{1,5})?(/(tcp|udp|sctp|dccp))?$`)

// Validator returns the shared validator with nyx's custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("portspec", func(fl validator.FieldLevel) bool {
			return portSpecRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Struct validates a Go struct with `validate:` tags and flattens failures into one message.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "portspec":
		return fmt.Sprintf("%s: %q is not a port spec (N, N/proto or N-M/proto)", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation (value %v)", field, fe.Tag(), fe.Value())
	}
}
