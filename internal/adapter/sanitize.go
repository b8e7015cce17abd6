package adapter

import "github.com/microcosm-cc/bluemonday"

// DescriptionSanitizer cleans upstream description markup. A nil
// sanitizer passes markup through untouched.
type DescriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer keeps formatting tags (b, i, p, br, lists, links)
// and strips scripts, handlers and styles.
func NewDescriptionSanitizer() *DescriptionSanitizer {
	return &DescriptionSanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *DescriptionSanitizer) Sanitize(html string) string {
	if s == nil || html == "" {
		return html
	}
	return s.policy.Sanitize(html)
}
