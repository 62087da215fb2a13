package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/machinename"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("machinename", func(fl validator.FieldLevel) bool {
		return machinename.Valid(fl.Field().String())
	})
	return v
}

// CheckShape verifies the structural contract every transform relies on:
// machine-name ids, transitions with at least one from-state and a to-state.
// It does not check referential integrity; dangling state references are
// allowed. Failures wrap ErrInvalidArgument.
func CheckShape(w Workflow) error {
	err := validate.Struct(w)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", strings.TrimPrefix(fe.Namespace(), "Workflow."), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(fields, "; "))
}

// Validator exposes the shared validator so request types elsewhere can
// use the machinename tag.
func Validator() *validator.Validate {
	return validate
}
