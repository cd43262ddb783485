package session

import (
	"encoding/base64"
	"net/http"
	"time"
)

const (
	CookieIdentity  = "chorehub_identity"
	CookieName      = "chorehub_name"
	CookieHousehold = "chorehub_household"

	cookieMaxAge = 365 * 24 * time.Hour
)

// Persister stores a Session in three cookies that are always written and
// expired together.
type Persister struct {
	sealer *Sealer
	secure bool
}

// NewPersister seals cookie values when secret is non-empty.
func NewPersister(secret string, secure bool) (*Persister, error) {
	p := &Persister{secure: secure}
	if secret != "" {
		s, err := NewSealer(secret)
		if err != nil {
			return nil, err
		}
		p.sealer = s
	}
	return p, nil
}

func (p *Persister) fields(s Session) [3][2]string {
	return [3][2]string{
		{CookieIdentity, s.IdentityID},
		{CookieName, s.DisplayName},
		{CookieHousehold, s.HouseholdCode},
	}
}

func (p *Persister) encode(name, value string) (string, error) {
	if p.sealer != nil {
		return p.sealer.Seal(name, value)
	}
	return base64.RawURLEncoding.EncodeToString([]byte(value)), nil
}

func (p *Persister) decode(name, value string) (string, error) {
	if p.sealer != nil {
		return p.sealer.Open(name, value)
	}
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", errMalformed
	}
	return string(b), nil
}

func (p *Persister) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Save writes all three cookies. Nothing is written if any value fails to
// encode.
func (p *Persister) Save(w http.ResponseWriter, s Session) error {
	var cookies []*http.Cookie
	for _, f := range p.fields(s) {
		v, err := p.encode(f[0], f[1])
		if err != nil {
			return err
		}
		cookies = append(cookies, p.cookie(f[0], v, int(cookieMaxAge.Seconds())))
	}
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
	return nil
}

// Load restores a session. A missing, partial or tampered set reports false.
func (p *Persister) Load(r *http.Request) (Session, bool) {
	var vals [3]string
	for i, name := range []string{CookieIdentity, CookieName, CookieHousehold} {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return Session{}, false
		}
		v, err := p.decode(name, c.Value)
		if err != nil {
			return Session{}, false
		}
		vals[i] = v
	}
	s := Session{IdentityID: vals[0], DisplayName: vals[1], HouseholdCode: vals[2]}
	return s, s.Valid()
}

// Clear expires all three cookies.
func (p *Persister) Clear(w http.ResponseWriter) {
	for _, name := range []string{CookieIdentity, CookieName, CookieHousehold} {
		http.SetCookie(w, p.cookie(name, "", -1))
	}
}
