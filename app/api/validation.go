package api

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError is a single entry of the 422 validation detail list.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func missingFieldError(field string) FieldError {
	return FieldError{
		Loc:  []string{"body", field},
		Msg:  "field required",
		Type: "value_error.missing",
	}
}

func invalidURLError(field string, err error) FieldError {
	return FieldError{
		Loc:  []string{"body", field},
		Msg:  err.Error(),
		Type: "value_error.url",
	}
}

func invalidBodyError() FieldError {
	return FieldError{
		Loc:  []string{"body"},
		Msg:  "invalid JSON body",
		Type: "value_error.jsondecode",
	}
}

func invalidIDError() FieldError {
	return FieldError{
		Loc:  []string{"path", "id"},
		Msg:  "value is not a valid integer",
		Type: "type_error.integer",
	}
}

// normalizeURL validates raw as an absolute http/https URL and returns its
// canonical form: lowercased scheme and host, and a trailing slash appended
// to bare-host URLs. Stored and returned URLs are always canonical.
func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https")
	}

	if u.Host == "" {
		return "", fmt.Errorf("URL host is missing")
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}
