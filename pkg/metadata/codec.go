// Package metadata encodes token descriptions into the size-bounded hex blob
// stored on an issuance, and decodes them back.
package metadata

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/mptkit/pkg/fault"
)

// MaxBytes is the byte budget of an encoded record; its hex form may be at
// most MaxHexLength characters.
const (
	MaxBytes     = 1024
	MaxHexLength = MaxBytes * 2
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

var errInvalidURL = errors.New("url must be absolute")

// Record is a token description.
type Record struct {
	CurrencyCode  string    `json:"currency_code"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	IconURL       string    `json:"icon_url,omitempty"`
	AssetClass    string    `json:"asset_class,omitempty"`
	AssetSubclass string    `json:"asset_subclass,omitempty"`
	Weblinks      []Weblink `json:"weblinks,omitempty"`
}

// Weblink is one entry of a record's link list.
type Weblink struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
	Title    string `json:"title"`
}

// wire is the compact on-ledger form. Field order is the serialization order.
type wire struct {
	C  string     `json:"c"`
	N  string     `json:"n"`
	D  string     `json:"d,omitempty"`
	I  string     `json:"i,omitempty"`
	CL string     `json:"cl,omitempty"`
	CS string     `json:"cs,omitempty"`
	W  []wireLink `json:"w,omitempty"`
	// A duplicates the name in records written by older clients.
	A string `json:"a,omitempty"`
}

type wireLink struct {
	U string `json:"u"`
	C string `json:"c,omitempty"`
	T string `json:"t"`
}

// Codec encodes and decodes records.
type Codec struct {
	// Strict rejects asset classes and subclasses outside the known
	// vocabulary instead of logging a warning.
	Strict bool
	Log    zerolog.Logger
}

// NewCodec creates a codec.
func NewCodec(strict bool, l zerolog.Logger) *Codec {
	return &Codec{Strict: strict, Log: l}
}

// Encode validates r and returns its uppercase hex form. It fails with
// *fault.MetadataTooLargeError when the result would exceed MaxBytes.
func (c *Codec) Encode(r Record) (string, error) {
	if err := c.validate(r); err != nil {
		return "", err
	}

	w := wire{
		C:  r.CurrencyCode,
		N:  r.Name,
		D:  r.Description,
		I:  r.IconURL,
		CL: r.AssetClass,
		CS: r.AssetSubclass,
	}
	for _, l := range r.Weblinks {
		if l.URL == "" || l.Title == "" {
			continue
		}
		w.W = append(w.W, wireLink{U: l.URL, C: l.Category, T: l.Title})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return "", fault.Invalid("metadata", "serialize: %v", err)
	}
	raw := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if len(raw) > MaxBytes {
		return "", &fault.MetadataTooLargeError{ActualBytes: len(raw), LimitBytes: MaxBytes}
	}
	return strings.ToUpper(hex.EncodeToString(raw)), nil
}

// Decode parses a hex blob. It returns false on any malformed input: odd
// length, invalid hex digits, invalid UTF-8 or an unexpected structure.
// Unknown vocabulary values are kept as is.
func (c *Codec) Decode(blob string) (*Record, bool) {
	blob = strings.TrimSpace(blob)
	if blob == "" || len(blob)%2 != 0 {
		return nil, false
	}
	raw, err := hex.DecodeString(blob)
	if err != nil || !utf8.Valid(raw) {
		return nil, false
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, false
	}
	if w.C == "" && w.N == "" && w.A == "" {
		return nil, false
	}

	r := &Record{
		CurrencyCode:  w.C,
		Name:          w.N,
		Description:   w.D,
		IconURL:       w.I,
		AssetClass:    w.CL,
		AssetSubclass: w.CS,
	}
	if r.Name == "" {
		r.Name = w.A
	}
	for _, l := range w.W {
		r.Weblinks = append(r.Weblinks, Weblink{URL: l.U, Category: l.C, Title: l.T})
	}
	return r, true
}

func (c *Codec) validate(r Record) error {
	if r.CurrencyCode == "" {
		return fault.MissingField("currency_code")
	}
	if !currencyCodeRe.MatchString(r.CurrencyCode) {
		return fault.Invalid("currency_code", "must be 3-20 uppercase letters or digits")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fault.MissingField("name")
	}
	if r.IconURL != "" {
		if err := checkURL(r.IconURL); err != nil {
			return fault.Invalid("icon_url", "%v", err)
		}
	}
	for i, l := range r.Weblinks {
		if l.URL == "" || l.Title == "" {
			continue
		}
		if err := checkURL(l.URL); err != nil {
			return fault.Invalid("weblinks", "link %d: %v", i, err)
		}
		if l.Category != "" && !KnownCategory(l.Category) {
			c.Log.Warn().Str("category", l.Category).Msg("unknown weblink category")
		}
	}

	if r.AssetClass != "" && !KnownClass(r.AssetClass) {
		if c.Strict {
			return fault.Invalid("asset_class", "unknown asset class %q", r.AssetClass)
		}
		c.Log.Warn().Str("asset_class", r.AssetClass).Msg("unknown asset class")
	}
	if r.AssetSubclass != "" && !KnownSubclass(r.AssetClass, r.AssetSubclass) {
		if c.Strict {
			return fault.Invalid("asset_subclass", "unknown subclass %q for class %q", r.AssetSubclass, r.AssetClass)
		}
		c.Log.Warn().
			Str("asset_class", r.AssetClass).
			Str("asset_subclass", r.AssetSubclass).
			Msg("unknown asset subclass")
	}
	return nil
}

func checkURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errInvalidURL
	}
	return nil
}

var defaultCodec = &Codec{Log: zerolog.Nop()}

// Encode encodes r with a non-strict codec that does not log.
func Encode(r Record) (string, error) { return defaultCodec.Encode(r) }

// Decode decodes blob with the default codec.
func Decode(blob string) (*Record, bool) { return defaultCodec.Decode(blob) }
