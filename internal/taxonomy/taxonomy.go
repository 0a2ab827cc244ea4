// Package taxonomy classifies free-text interest tags into semantic domains.
//
// A Taxonomy is an ordered list of domains, each with a keyword list. A tag
// belongs to the first domain (in declaration order) that has a keyword
// occurring as a substring of the lowercased tag. Tags that no domain claims
// fall into the Other bucket. Declaration order decides ambiguous tags, so it is
// part of a Taxonomy's identity and is never re-sorted.
package taxonomy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Other is the bucket for tags that match no domain.
const Other = "other"

// reservedNames cannot be used as domain names.
var reservedNames = []string{Other, "general"}

// Domain is one named keyword list.
type Domain struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Taxonomy is an immutable, ordered domain table.
// The zero value is not usable; construct with New.
type Taxonomy struct {
	domains []Domain
}

// New validates domains and returns a Taxonomy that owns a copy of them.
// Keywords are lowercased once here so Classify only folds the tag.
func New(domains []Domain) (*Taxonomy, error) {
	if len(domains) == 0 {
		return nil, errors.New("taxonomy must declare at least one domain")
	}

	seen := make(map[string]bool, len(domains))
	out := make([]Domain, 0, len(domains))
	for i, d := range domains {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("domain %d: name is required", i)
		}
		if slices.Contains(reservedNames, name) {
			return nil, fmt.Errorf("domain %d: %q is a reserved name", i, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("domain %d: duplicate domain %q", i, name)
		}
		seen[name] = true

		if len(d.Keywords) == 0 {
			return nil, fmt.Errorf("domain %q: at least one keyword is required", name)
		}
		keywords := make([]string, 0, len(d.Keywords))
		for _, kw := range d.Keywords {
			if kw == "" {
				return nil, fmt.Errorf("domain %q: empty keyword", name)
			}
			keywords = append(keywords, lower(kw))
		}

		out = append(out, Domain{Name: name, Keywords: keywords})
	}

	return &Taxonomy{domains: out}, nil
}

// MustNew is like New but panics on an invalid table.
// Use it only for tables compiled into the binary.
func MustNew(domains []Domain) *Taxonomy {
	t, err := New(domains)
	if err != nil {
		panic(fmt.Sprintf("invalid taxonomy: %v", err))
	}
	return t
}

// Domains returns a copy of the domain table in declaration order.
func (t *Taxonomy) Domains() []Domain {
	out := make([]Domain, len(t.domains))
	for i, d := range t.domains {
		out[i] = Domain{Name: d.Name, Keywords: slices.Clone(d.Keywords)}
	}
	return out
}

// Names returns the domain names in declaration order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.domains))
	for i, d := range t.domains {
		names[i] = d.Name
	}
	return names
}

// BucketOrder returns the domain names followed by Other.
// This is the iteration order used whenever buckets are compared.
func (t *Taxonomy) BucketOrder() []string {
	return append(t.Names(), Other)
}

// Classify returns the first domain with a keyword contained in the lowercased tag.
// ok is false when no domain matches; callers put such tags in Other.
func (t *Taxonomy) Classify(tag string) (name string, ok bool) {
	folded := lower(tag)
	for _, d := range t.domains {
		for _, kw := range d.Keywords {
			if strings.Contains(folded, kw) {
				return d.Name, true
			}
		}
	}
	return "", false
}

// Bucket groups a tag collection by domain. Duplicate tags collapse.
// Every domain name and Other is present in the result, possibly empty.
func (t *Taxonomy) Bucket(tags []string) Buckets {
	b := make(Buckets, len(t.domains)+1)
	for _, name := range t.BucketOrder() {
		b[name] = []string{}
	}

	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}

		name, ok := t.Classify(tag)
		if !ok {
			name = Other
		}
		b[name] = append(b[name], tag)
	}

	for name := range b {
		slices.Sort(b[name])
	}
	return b
}

// Buckets maps a bucket name (domain or Other) to the tags it holds.
type Buckets map[string][]string

// Flatten returns every tag across all buckets, sorted.
func (b Buckets) Flatten() []string {
	var all []string
	for _, tags := range b {
		all = append(all, tags...)
	}
	slices.Sort(all)
	return all
}

// Len returns the number of tags across all buckets.
func (b Buckets) Len() int {
	n := 0
	for _, tags := range b {
		n += len(tags)
	}
	return n
}

// lower applies Unicode lowercasing. A Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
