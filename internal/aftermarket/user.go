package aftermarket

import (
	"net/url"
	"strings"

	"aftermarket-report/internal/mailer"
)

// ResolveUser identifies who is running the report: the user or ad_user
// query parameter, then the USERNAME or USER variable. A DOMAIN\ prefix
// is dropped.
func ResolveUser(params url.Values, getenv func(string) string) string {
	candidates := []string{params.Get("user"), params.Get("ad_user")}
	if getenv != nil {
		candidates = append(candidates, getenv("USERNAME"), getenv("USER"))
	}
	for _, c := range candidates {
		if u := stripDomain(c); u != "" {
			return u
		}
	}
	return mailer.UnknownUser
}

func stripDomain(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, `\`); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
