package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/roomsync/internal/scheduler"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := scheduler.ParseWeekday(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := scheduler.ParseClockTime(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := scheduler.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// requestError is returned when a body cannot be decoded or fails struct
// validation. Fields is nil for decoding failures.
type requestError struct {
	err    error
	Fields map[string]string
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &requestError{err: fmt.Errorf("%w: %v", errBadRequestBody, err)}
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return &requestError{err: err}
	}
	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &requestError{err: errors.New("validation failed"), Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " is invalid"
	case "weekday":
		return name + " must be a weekday name"
	case "hhmm":
		return name + " must use HH:MM"
	case "isodate":
		return name + " must use YYYY-MM-DD"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

func (r responder) writeRequestError(w http.ResponseWriter, req *http.Request, err error) {
	var rErr *requestError
	if errors.As(err, &rErr) && rErr.Fields != nil {
		r.writeJSON(req.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: statusMessage(http.StatusUnprocessableEntity),
			Errors:  rErr.Fields,
		})
		return
	}
	r.writeError(req.Context(), w, http.StatusBadRequest, errBadRequestBody)
}
