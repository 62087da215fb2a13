package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// QueryParam is the query parameter that carries the token.
const QueryParam = "workflow"

// ErrInvalidURL indicates a URL that is not absolute or cannot be parsed.
var ErrInvalidURL = errors.New("invalid url")

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", ErrInvalidURL, raw)
	}
	return u, nil
}

// BuildShareURL sets the workflow parameter on baseURL, overwriting any
// previous value and keeping every other parameter.
func BuildShareURL(w domain.Workflow, baseURL string) (string, error) {
	u, err := parseAbsolute(baseURL)
	if err != nil {
		return "", err
	}
	token, err := Encode(w)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(QueryParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractFromURL reads the workflow parameter. It returns nil, nil when the
// parameter is absent.
func ExtractFromURL(raw string) (*domain.Workflow, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return nil, err
	}
	token := u.Query().Get(QueryParam)
	if token == "" {
		return nil, nil
	}
	return Decode(token)
}

// RemoveFromURL strips the workflow parameter. The boolean reports whether
// the URL changed.
func RemoveFromURL(raw string) (string, bool) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return raw, false
	}
	q := u.Query()
	if !q.Has(QueryParam) {
		return raw, false
	}
	q.Del(QueryParam)
	u.RawQuery = q.Encode()
	return u.String(), true
}

// Clipboard is the injected capability that receives share links.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Status is the outcome of a share attempt.
type Status string

const (
	StatusEmpty  Status = "empty"
	StatusCopied Status = "copied"
	StatusFailed Status = "failed"
)

// Text is the button caption for the status.
func (s Status) Text() string {
	switch s {
	case StatusCopied:
		return "Copied!"
	case StatusFailed:
		return "Failed"
	default:
		return "Share URL"
	}
}

// Copy builds the share URL and writes it to the clipboard. A workflow with
// no entities is not shared. Failures are reported through the status and
// never returned as errors.
func Copy(ctx context.Context, clip Clipboard, w domain.Workflow, baseURL string) (Status, string) {
	if w.Empty() {
		return StatusEmpty, ""
	}
	link, err := BuildShareURL(w, baseURL)
	if err != nil {
		return StatusFailed, ""
	}
	if clip == nil {
		return StatusFailed, link
	}
	if err := clip.WriteText(ctx, link); err != nil {
		return StatusFailed, link
	}
	return StatusCopied, link
}
