package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/lanzouproxy/lanzouproxy/internal/common/apperrors"
)

// Cookie is one stored portal cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	MaxAge   int
	HttpOnly bool
}

// CookieJar is an immutable set of cookies keyed by name. Insertion order is
// kept so the outbound Cookie header is stable.
type CookieJar struct {
	order  []string
	byName map[string]Cookie
}

// NewCookieJar builds a jar from cookies set by a portal response. A later
// cookie with the same name replaces the earlier value in place. Deletion
// directives (Max-Age <= 0 on the wire) are dropped.
func NewCookieJar(cookies []*http.Cookie) CookieJar {
	jar := CookieJar{byName: make(map[string]Cookie, len(cookies))}
	for _, c := range cookies {
		if c == nil || c.Name == "" || c.MaxAge < 0 {
			continue
		}
		jar.put(Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			MaxAge:   c.MaxAge,
			HttpOnly: c.HttpOnly,
		})
	}
	return jar
}

// ParseCookieHeader builds a jar from a Cookie request header value such as
// "phpdisk_info=abc; ylogin=42".
func ParseCookieHeader(header string) (CookieJar, apperrors.Error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return CookieJar{}, ErrInvalidRequest.Msg("cookie is required")
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return CookieJar{}, ErrInvalidRequest.MsgErr("invalid cookie header", err)
	}
	return NewCookieJar(cookies), nil
}

func (j *CookieJar) put(c Cookie) {
	if _, ok := j.byName[c.Name]; !ok {
		j.order = append(j.order, c.Name)
	}
	j.byName[c.Name] = c
}

// Len returns the number of cookies in the jar.
func (j CookieJar) Len() int {
	return len(j.order)
}

// Get returns the cookie with the given name.
func (j CookieJar) Get(name string) (Cookie, bool) {
	c, ok := j.byName[name]
	return c, ok
}

// Cookies returns the cookies in insertion order.
func (j CookieJar) Cookies() []Cookie {
	out := make([]Cookie, 0, len(j.order))
	for _, name := range j.order {
		out = append(out, j.byName[name])
	}
	return out
}

// Header renders the jar as a Cookie request header: name=value pairs joined
// by "; ", attributes stripped.
func (j CookieJar) Header() string {
	var sb strings.Builder
	for i, name := range j.order {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(j.byName[name].Value)
	}
	return sb.String()
}
