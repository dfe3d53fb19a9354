package auth

import "net/url"

// RedirectURLWithToken appends the OTT as the `ott` query parameter of
// baseURL, preserving every other query parameter and overwriting any
// existing `ott`. An empty ott returns baseURL unchanged, as does a baseURL
// the parser rejects.
func RedirectURLWithToken(baseURL, ott string) string {
	if ott == "" {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	q := u.Query()
	q.Set("ott", ott)
	u.RawQuery = q.Encode()
	return u.String()
}
