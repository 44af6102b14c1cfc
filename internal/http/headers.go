package http

import (
	"net/http"
)

const (
	acceptHTML  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptText  = "text/plain,*/*;q=0.5"
	acceptXML   = "application/xml,text/xml;q=0.9,*/*;q=0.5"
	defaultLang = "en-US,en;q=0.9"
)

// HeaderProfile is the header set sent with each request. The crawler
// always announces its own identity so robots.txt rules written for it apply.
type HeaderProfile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// NewHeaderProfile returns the profile used for page requests
func NewHeaderProfile(userAgent string) HeaderProfile {
	return HeaderProfile{
		UserAgent:      userAgent,
		Accept:         acceptHTML,
		AcceptLanguage: defaultLang,
	}
}

// WithAccept returns a copy of the profile with a different Accept header
func (p HeaderProfile) WithAccept(accept string) HeaderProfile {
	p.Accept = accept
	return p
}

// ApplyHeaders sets the profile headers on req
func (p HeaderProfile) ApplyHeaders(req *http.Request) {
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	if p.Accept != "" {
		req.Header.Set("Accept", p.Accept)
	}
	if p.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", p.AcceptLanguage)
	}
}
