package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"timed-quiz-service/internal/domain"
)

// Issue is one shape violation in a grade request.
type Issue struct {
	Code    string `json:"code"`
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

type gradeRequest struct {
	Answers []rawAnswer `json:"answers" validate:"required,dive"`
}

type rawAnswer struct {
	ID    json.RawMessage `json:"id" validate:"required,answer_id"`
	Value json.RawMessage `json:"value" validate:"required,answer_value"`
}

var issueMessages = map[string]string{
	"required":     "Required",
	"answer_id":    "Expected string or number",
	"answer_value": "Expected string, number, or array of numbers",
}

// gradeDecoder validates the grade request body shape.
type gradeDecoder struct {
	validate *validator.Validate
}

func newGradeDecoder() *gradeDecoder {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("answer_id", func(fl validator.FieldLevel) bool {
		var id domain.AnswerID
		return json.Unmarshal(fl.Field().Bytes(), &id) == nil
	})
	_ = v.RegisterValidation("answer_value", func(fl validator.FieldLevel) bool {
		var value domain.AnswerValue
		return json.Unmarshal(fl.Field().Bytes(), &value) == nil
	})
	return &gradeDecoder{validate: v}
}

// Decode parses a syntactically valid JSON body into answers. Shape problems
// are reported as issues rather than an error.
func (d *gradeDecoder) Decode(body []byte) ([]domain.Answer, []Issue, error) {
	if kind := receivedKind(body); kind != "object" {
		return nil, []Issue{{Code: "invalid_type", Path: []any{}, Message: "Expected object, received " + kind}}, nil
	}

	var envelope struct {
		Answers []json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, []Issue{typeIssue(typeErr)}, nil
		}
		return nil, nil, err
	}
	var issues []Issue
	for i, raw := range envelope.Answers {
		if kind := receivedKind(raw); kind != "object" {
			issues = append(issues, Issue{
				Code:    "invalid_type",
				Path:    []any{"answers", i},
				Message: "Expected object, received " + kind,
			})
		}
	}
	if len(issues) > 0 {
		return nil, issues, nil
	}

	var req gradeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, err
	}

	if err := d.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, nil, err
		}
		issues = make([]Issue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, Issue{
				Code:    "invalid_type",
				Path:    namespacePath(fe.Namespace()),
				Message: issueMessages[fe.Tag()],
			})
		}
		return nil, issues, nil
	}

	answers := make([]domain.Answer, len(req.Answers))
	for i, raw := range req.Answers {
		if err := json.Unmarshal(raw.ID, &answers[i].ID); err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal(raw.Value, &answers[i].Value); err != nil {
			return nil, nil, err
		}
	}
	return answers, nil, nil
}

func typeIssue(err *json.UnmarshalTypeError) Issue {
	path := []any{}
	if err.Field != "" {
		path = namespacePath("gradeRequest." + err.Field)
	}
	return Issue{
		Code:    "invalid_type",
		Path:    path,
		Message: "Expected " + expectedKind(err.Type) + ", received " + err.Value,
	}
}

// receivedKind names the JSON type of a syntactically valid value.
func receivedKind(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "undefined"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	return "number"
}

func expectedKind(t reflect.Type) string {
	if t.Kind() == reflect.Slice {
		return "array"
	}
	return t.String()
}

// namespacePath turns "gradeRequest.answers[0].id" into ["answers", 0, "id"].
func namespacePath(ns string) []any {
	parts := strings.Split(ns, ".")
	path := []any{}
	for _, part := range parts[1:] {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				path = append(path, part)
				break
			}
			if open > 0 {
				path = append(path, part[:open])
			}
			end := strings.IndexByte(part[open:], ']')
			if end < 0 {
				path = append(path, part[open:])
				break
			}
			idx := part[open+1 : open+end]
			if n, err := strconv.Atoi(idx); err == nil {
				path = append(path, n)
			} else {
				path = append(path, idx)
			}
			part = part[open+end+1:]
		}
	}
	return path
}
