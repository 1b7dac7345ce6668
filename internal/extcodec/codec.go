package extcodec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const maxExtensionLength = 16

var (
	// ErrInvalidExtension is returned for extensions outside [a-z0-9]{1,16}.
	ErrInvalidExtension = errors.New("invalid file extension")
	// ErrInvalidTable signals a pair list that is not a bijection.
	ErrInvalidTable = errors.New("extension table is not a bijection")
)

// Pair binds a real extension to the extension written to disk.
type Pair struct {
	Real   string
	Stored string
}

// Codec maps real extensions to obfuscated stored extensions and back.
// Both directions are explicit lookup tables validated at construction.
//
// The table is closed as an involution: a stored extension that shows up
// as a real extension encodes to its partner, so Decode(Encode(x)) == x
// for every valid x, mapped or not.
type Codec struct {
	pairs  []Pair
	encode map[string]string
	decode map[string]string
}

var defaultPairs = []Pair{
	{Real: "mp3", Stored: "ad3"},
	{Real: "mp4", Stored: "vd4"},
	{Real: "png", Stored: "ph"},
	{Real: "jpg", Stored: "sz"},
	{Real: "jpeg", Stored: "ssz"},
	{Real: "json", Stored: "jsn"},
	{Real: "js", Stored: "sc"},
	{Real: "css", Stored: "sty"},
	{Real: "html", Stored: "hyp"},
}

// DefaultPairs returns a copy of the production table.
func DefaultPairs() []Pair {
	out := make([]Pair, len(defaultPairs))
	copy(out, defaultPairs)
	return out
}

// Default returns the codec built from the production table.
func Default() *Codec {
	c, err := New(defaultPairs)
	if err != nil {
		panic(fmt.Sprintf("extcodec: default table: %v", err))
	}
	return c
}

// New builds a codec, rejecting any pair list that would break bijectivity.
func New(pairs []Pair) (*Codec, error) {
	c := &Codec{
		encode: make(map[string]string, len(pairs)*2),
		decode: make(map[string]string, len(pairs)*2),
	}

	reals := make(map[string]struct{}, len(pairs))
	stored := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		r, err := normalize(p.Real)
		if err != nil || r == "" {
			return nil, fmt.Errorf("%w: real extension %q", ErrInvalidTable, p.Real)
		}
		s, err := normalize(p.Stored)
		if err != nil || s == "" {
			return nil, fmt.Errorf("%w: stored extension %q", ErrInvalidTable, p.Stored)
		}
		if r == s {
			return nil, fmt.Errorf("%w: %q maps to itself", ErrInvalidTable, r)
		}
		if _, dup := reals[r]; dup {
			return nil, fmt.Errorf("%w: duplicate real extension %q", ErrInvalidTable, r)
		}
		if _, dup := stored[s]; dup {
			return nil, fmt.Errorf("%w: duplicate stored extension %q", ErrInvalidTable, s)
		}
		reals[r] = struct{}{}
		stored[s] = struct{}{}
	}

	for r := range reals {
		if _, clash := stored[r]; clash {
			return nil, fmt.Errorf("%w: %q is both real and stored", ErrInvalidTable, r)
		}
	}

	for _, p := range pairs {
		r, _ := normalize(p.Real)
		s, _ := normalize(p.Stored)
		c.pairs = append(c.pairs, Pair{Real: r, Stored: s})
		c.encode[r] = s
		c.encode[s] = r
		c.decode[s] = r
		c.decode[r] = s
	}
	return c, nil
}

// Encode returns the extension to write on disk for a real extension.
func (c *Codec) Encode(realExt string) (string, error) {
	ext, err := normalize(realExt)
	if err != nil {
		return "", err
	}
	if mapped, ok := c.encode[ext]; ok {
		return mapped, nil
	}
	return ext, nil
}

// Decode returns the real extension for a stored extension.
func (c *Codec) Decode(storedExt string) (string, error) {
	ext, err := normalize(storedExt)
	if err != nil {
		return "", err
	}
	if mapped, ok := c.decode[ext]; ok {
		return mapped, nil
	}
	return ext, nil
}

// Mapped reports whether ext takes part in the table on either side.
func (c *Codec) Mapped(ext string) bool {
	ext, err := normalize(ext)
	if err != nil {
		return false
	}
	_, ok := c.encode[ext]
	return ok
}

// StoredExtensions lists the obfuscated extensions of the table, sorted.
func (c *Codec) StoredExtensions() []string {
	out := make([]string, 0, len(c.pairs))
	for _, p := range c.pairs {
		out = append(out, p.Stored)
	}
	sort.Strings(out)
	return out
}

func normalize(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if len(ext) > maxExtensionLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}
	return ext, nil
}
