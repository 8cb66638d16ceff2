package utils

import (
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/itchan-dev/agora/shared/errors"
	"github.com/microcosm-cc/bluemonday"
)

type ThreadValidator struct {
	MaxTitleLen int
	MaxBodyLen  int
}

func (v *ThreadValidator) Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.InvalidInput("Title is empty")
	}
	if utf8.RuneCountInString(title) > v.MaxTitleLen {
		return errors.InvalidInput("Title is too long")
	}
	return nil
}

func (v *ThreadValidator) Body(body string) error {
	if utf8.RuneCountInString(body) > v.MaxBodyLen {
		return errors.InvalidInput("Body is too long")
	}
	return nil
}

type PostValidator struct {
	MaxLen int
}

func (v *PostValidator) Content(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.InvalidInput("Content is empty")
	}
	if utf8.RuneCountInString(text) > v.MaxLen {
		return errors.InvalidInput("Content is too long")
	}
	return nil
}

// ImageRef accepts absolute http(s) URLs only.
func (v *PostValidator) ImageRef(ref string) error {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.InvalidInput("Image reference must be an http(s) URL")
	}
	return nil
}

// Sanitizer strips markup from user supplied text, including markup hidden
// behind entities. The result is plain unescaped text that may still contain
// a literal '<' or '&', so renderers must escape it.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *Sanitizer) Sanitize(text string) string {
	stripped := s.policy.Sanitize(html.UnescapeString(text))
	return strings.TrimSpace(html.UnescapeString(stripped))
}
