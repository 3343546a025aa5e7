package notification

import (
	"net/url"
	"regexp"
)

var urlPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s"']+`)

// redact masks the userinfo and query of any URL in err's message
func redact(err error) string {
	return urlPattern.ReplaceAllStringFunc(err.Error(), func(raw string) string {
		u, perr := url.Parse(raw)
		if perr != nil {
			return "[url]"
		}
		if u.User != nil {
			u.User = url.User("***")
		}
		if u.RawQuery != "" {
			u.RawQuery = "***"
		}
		return u.String()
	})
}
