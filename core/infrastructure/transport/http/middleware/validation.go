package middleware

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct validates s and returns one detail per failed field, or nil
func ValidateStruct(s any) []dto.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []dto.ErrorDetail{{Message: err.Error()}}
	}
	details := make([]dto.ErrorDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ErrorDetail{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: "Validation failed",
		})
	}
	return details
}

// RequireQueryParams rejects requests missing any of the named query parameters
func RequireQueryParams(names ...string) func(http.Handler) http.Handler {
	return ValidateQueryParams(func(r *http.Request) error {
		query := r.URL.Query()
		for _, name := range names {
			if query.Get(name) == "" {
				return stderrors.New("missing query parameter: " + name)
			}
		}
		return nil
	})
}

// ValidateQueryParams validates query parameters
func ValidateQueryParams(validatorFunc func(*http.Request) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validatorFunc(r); err != nil {
				writeDetail(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
