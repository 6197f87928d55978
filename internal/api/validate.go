package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds the shared validator, teaching it to report fields
// by their JSON names so error envelopes match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// DecodeAndValidate decodes the JSON request body into dst and runs struct
// validation. On failure it writes the error envelope (naming the first
// offending field) and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", "")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			WriteError(w, http.StatusBadRequest, validationMessage(fe), fieldName(fe))
			return false
		}
		WriteError(w, http.StatusBadRequest, "invalid request", "")
		return false
	}

	return true
}

func fieldName(fe validator.FieldError) string {
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fieldName(fe) + " is required"
	case "oneof":
		return fieldName(fe) + " must be one of: " + fe.Param()
	case "min":
		return fieldName(fe) + " must be at least " + fe.Param()
	case "max":
		return fieldName(fe) + " must be at most " + fe.Param()
	case "email":
		return fieldName(fe) + " must be a valid email address"
	case "url":
		return fieldName(fe) + " must be a valid URL"
	default:
		return fieldName(fe) + " is invalid"
	}
}
