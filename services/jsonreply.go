package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"wardrobeapi/models"
)

var codeFence = regexp.MustCompile("```(?:json|JSON)?\\s*\\n?|\\n?```")

// StripCodeFences removes markdown code fences around a JSON reply.
func StripCodeFences(raw string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
}

// ParseJSONReply decodes an AI reply into T and validates it. Objects are
// validated against their validate tags; lists must be non-empty and every
// element is validated.
func ParseJSONReply[T any](raw string) (T, error) {
	var out T
	body := StripCodeFences(raw)
	if body == "" {
		return out, &MalformedResponseError{Raw: raw, Err: errors.New("empty reply")}
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, &MalformedResponseError{Raw: raw, Err: err}
	}
	if err := validateReply(reflect.ValueOf(out)); err != nil {
		return out, &MalformedResponseError{Raw: raw, Err: err}
	}
	return out, nil
}

func validateReply(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return errors.New("null reply")
		}
		return validateReply(v.Elem())
	case reflect.Struct:
		return models.Validate(v.Interface())
	case reflect.Slice:
		if v.Len() == 0 {
			return errors.New("empty list")
		}
		for i := 0; i < v.Len(); i++ {
			if err := validateReply(v.Index(i)); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
