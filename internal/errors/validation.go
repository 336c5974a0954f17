package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterJSONFieldNames makes validator report json tag names, so
// field errors use the same keys the client sent.
func RegisterJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// RespondWithBindingError answers a failed ShouldBind* call with 422 and
// field-level messages.
func RespondWithBindingError(c *gin.Context, err error) {
	fields := BindingErrorFields(err)
	message := "The given data was invalid."
	if keys := sortedKeys(fields); len(keys) > 0 {
		message = fields[keys[0]][0]
	}
	Unprocessable(c, ValidationError, message, fields)
}

// BindingErrorFields converts binding errors into field -> messages.
func BindingErrorFields(err error) map[string][]string {
	fields := map[string][]string{}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		for _, fe := range verrs {
			key := fieldKey(fe.Namespace())
			fields[key] = append(fields[key], fieldMessage(key, fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		key := typeErr.Field
		if key == "" {
			key = "body"
		}
		fields[key] = append(fields[key], fmt.Sprintf("The %s field must be a %s.", label(key), typeErr.Type.Kind()))
		return fields
	}

	if stderrors.Is(err, io.EOF) {
		fields["body"] = []string{"The request body is required."}
		return fields
	}

	fields["body"] = []string{"The request body must be valid JSON."}
	return fields
}

// fieldKey drops the root struct name from a validator namespace.
func fieldKey(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func label(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, ".", " "), "_", " ")
}

func fieldMessage(key string, fe validator.FieldError) string {
	name := label(key)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("The %s field must be at least %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", name, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
