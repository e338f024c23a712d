package common

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-chi/chi/v5"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// GetAndValidateURLParam extracts and decodes a name parameter from the route.
// Names start with a letter or digit and may contain dashes and underscores.
func GetAndValidateURLParam(r *http.Request, paramName string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, paramName))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", paramName)
	}

	if decoded == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}

	if !namePattern.MatchString(decoded) {
		return "", fmt.Errorf("%s contains invalid characters", paramName)
	}

	return decoded, nil
}
