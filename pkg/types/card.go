package types

import (
	"errors"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidURL reports a missing, unparseable, or non-http(s) card URL.
var ErrInvalidURL = errors.New("invalid url: must be an absolute http(s) URL")

// Card is the atomic item representing a saved tab or link.
type Card struct {
	ID           string            // UUID v7, generated on creation.
	Title        string            // Display title; falls back to hostname, then "Untitled".
	URL          string            // Canonical absolute http(s) URL.
	Favicon      string            // Favicon URL, optional.
	Note         string            // Free-form description, optional.
	CollectionID string            // Owning collection.
	GroupID      string            // Owning group.
	Meta         map[string]string // Open string-keyed map for template fields.
	CreatedAt    time.Time         // Timestamp of creation.
	UpdatedAt    time.Time         // Timestamp of last modification.
	Deleted      bool              // Tombstone flag (set by collection cascade).
	DeletedAt    *time.Time        // Tombstone timestamp; nil while live.
}

// CardPatch is a sparse update for Card. Nil fields are left untouched.
// Meta, when non-nil, replaces the whole map.
type CardPatch struct {
	Title   *string
	URL     *string
	Favicon *string
	Note    *string
	GroupID *string
	Meta    map[string]string
}

// TabPayload describes a browser tab being saved as a new card.
type TabPayload struct {
	Title   string
	URL     string
	Favicon string
}

// UntitledCard is the final title fallback when neither the given title nor
// the URL hostname yields a usable name.
const UntitledCard = "Untitled"

// maxTitleLen and maxNoteLen bound user-provided text fields.
const (
	maxTitleLen = 512
	maxNoteLen  = 8192
)

// Validate checks field constraints. A URL violation is reported as
// ErrInvalidURL so callers can match it with errors.Is.
func (c *Card) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, validation.By(checkHTTPURL)),
		validation.Field(&c.Title, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&c.Note, validation.RuneLength(0, maxNoteLen)),
	)
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		if _, bad := fields["URL"]; bad {
			return ErrInvalidURL
		}
	}
	return err
}

// checkHTTPURL is the ozzo rule backing Validate's URL field.
func checkHTTPURL(v any) error {
	s, _ := v.(string)
	_, err := NormalizeURL(s)
	return err
}

// NormalizeURL parses raw as an absolute http(s) URL and returns its
// canonical form: scheme and host lowercased, default port stripped,
// fragment dropped. Returns ErrInvalidURL for anything else, including
// javascript:, file:, and scheme-relative inputs.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	if (scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}
	u.Fragment = ""
	return u.String(), nil
}

// DeriveTitle returns the display title for a card: the trimmed given title,
// else the hostname of canonicalURL, else UntitledCard.
func DeriveTitle(title, canonicalURL string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if u, err := url.Parse(canonicalURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return UntitledCard
}
