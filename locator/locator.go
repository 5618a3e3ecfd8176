// Package locator describes elements in a backend-neutral way. A Locator renders to an XPath
// 1.0 expression that both the headless DOM backend and the WebDriver backend can evaluate,
// and the resolution rules for zero, one or many matches are applied here rather than in each
// backend, so that both report the same errors for the same page.
package locator

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
)

// Kind records how a Locator was built. It only affects descriptions; evaluation is always by
// XPath.
type Kind int

const (
	ByNameKind Kind = iota
	ByLabelKind
	ByAttributesKind
	ByPositionKind
)

func (k Kind) String() string {
	switch k {
	case ByNameKind:
		return "by-name"
	case ByLabelKind:
		return "by-label"
	case ByAttributesKind:
		return "by-attributes"
	case ByPositionKind:
		return "by-position"
	}
	return "unknown"
}

type branch struct {
	tag        string
	attributes map[string]string
	predicates []string
}

// Locator is an immutable element description. All methods return modified copies.
//
// A Locator can have several branches, for instance "an input of type submit, or a button of
// type submit"; they render as an XPath union and match in document order.
type Locator struct {
	kind     Kind
	branches []branch
	index    opt.Maybe[int]
	first    bool
}

// Element returns a Locator for elements with any of the given tag names, or any element if no
// tags are given.
func Element(tags ...string) Locator {
	if len(tags) == 0 {
		tags = []string{"*"}
	}
	l := Locator{kind: ByAttributesKind}
	for _, t := range tags {
		l.branches = append(l.branches, branch{tag: t})
	}
	return l
}

// ByName returns a Locator for elements whose name attribute equals name.
func ByName(name string, tags ...string) Locator {
	l := Element(tags...).WithAttribute("name", name)
	l.kind = ByNameKind
	return l
}

// ByID returns a Locator for elements whose id attribute equals id.
func ByID(id string, tags ...string) Locator {
	return Element(tags...).WithAttribute("id", id)
}

// ByAttributes returns a Locator for elements whose attributes have exactly the given values.
func ByAttributes(attributes map[string]string, tags ...string) Locator {
	l := Element(tags...)
	for k, v := range attributes {
		l = l.WithAttribute(k, v)
	}
	return l
}

// Or returns a Locator matching either this Locator or the other one. The index and the
// cardinality of the receiver are kept.
func (l Locator) Or(other Locator) Locator {
	ret := l.clone()
	for _, b := range other.branches {
		ret.branches = append(ret.branches, b.clone())
	}
	return ret
}

// WithAttribute adds an exact attribute match to every branch.
func (l Locator) WithAttribute(name, value string) Locator {
	ret := l.clone()
	for i := range ret.branches {
		if ret.branches[i].attributes == nil {
			ret.branches[i].attributes = make(map[string]string)
		}
		ret.branches[i].attributes[name] = value
	}
	return ret
}

// WithType restricts input-like elements to the given values of the type attribute.
func (l Locator) WithType(types ...string) Locator {
	conds := make([]string, 0, len(types))
	for _, t := range types {
		conds = append(conds, "@type="+Quote(t))
	}
	return l.Where(strings.Join(conds, " or "))
}

// WithIDOrName matches elements whose id or name attribute equals value.
func (l Locator) WithIDOrName(value string) Locator {
	q := Quote(value)
	return l.Where("@id=" + q + " or @name=" + q)
}

// WithText matches elements whose text content contains text.
func (l Locator) WithText(text string) Locator {
	return l.Where("contains(., " + Quote(text) + ")")
}

// WithExactText matches elements whose whitespace-normalized text content equals text.
func (l Locator) WithExactText(text string) Locator {
	return l.Where("normalize-space(.)=" + Quote(strings.Join(strings.Fields(text), " ")))
}

// Containing matches elements whose attribute value contains the substring.
func (l Locator) Containing(attribute, substring string) Locator {
	return l.Where("contains(" + attribute + ", " + Quote(substring) + ")")
}

// Where adds a raw XPath predicate, evaluated with the candidate element as the context node.
func (l Locator) Where(predicate string) Locator {
	ret := l.clone()
	for i := range ret.branches {
		ret.branches[i].predicates = append(ret.branches[i].predicates, "("+predicate+")")
	}
	return ret
}

// At selects the match with the given 0-based index, in document order.
func (l Locator) At(index int) Locator {
	ret := l.clone()
	ret.kind = ByPositionKind
	ret.index = opt.Some(index)
	return ret
}

// First makes the Locator resolve to the first match when there are several, instead of
// reporting an ambiguity.
func (l Locator) First() Locator {
	ret := l.clone()
	ret.first = true
	return ret
}

func (l Locator) Kind() Kind { return l.kind }

func (l Locator) Index() opt.Maybe[int] { return l.index }

// XPath renders the Locator relative to scopePrefix: "" for the whole document, "." for the
// descendants of the current context node, or any other location path. The positional index
// is not part of the expression; it is applied by Pick.
func (l Locator) XPath(scopePrefix string) string {
	parts := make([]string, 0, len(l.branches))
	for _, b := range l.branches {
		parts = append(parts, scopePrefix+"//"+b.render())
	}
	return strings.Join(parts, " | ")
}

// Condition renders the Locator as a boolean test on the context node itself, for use on an
// axis such as preceding-sibling::*[...].
func (l Locator) Condition() string {
	parts := make([]string, 0, len(l.branches))
	for _, b := range l.branches {
		parts = append(parts, "self::"+b.render())
	}
	return strings.Join(parts, " or ")
}

func (l Locator) String() string {
	s := l.XPath("")
	if l.index.IsDefined() {
		s = fmt.Sprintf("%s (index %d)", s, l.index.Value())
	}
	return s
}

// Pick applies the cardinality rules to a match count and returns the index of the match to
// use. Zero matches, or an index beyond the matches, is ElementNotFoundError; more than one
// match without an index is AmbiguousLocatorError unless First was used.
func (l Locator) Pick(count int) (int, error) {
	if count == 0 {
		return 0, framework.ElementNotFoundError{Locator: l.String()}
	}
	if l.index.IsDefined() {
		i := l.index.Value()
		if i < 0 || i >= count {
			return 0, framework.ElementNotFoundError{
				Locator: l.String(),
				Detail:  fmt.Sprintf("index %d but only %d match", i, count),
			}
		}
		return i, nil
	}
	if count > 1 && !l.first {
		return 0, framework.AmbiguousLocatorError{Locator: l.String(), Count: count}
	}
	return 0, nil
}

func (l Locator) clone() Locator {
	ret := l
	ret.branches = make([]branch, 0, len(l.branches))
	for _, b := range l.branches {
		ret.branches = append(ret.branches, b.clone())
	}
	return ret
}

func (b branch) clone() branch {
	ret := branch{tag: b.tag, predicates: slices.Clone(b.predicates)}
	if b.attributes != nil {
		ret.attributes = maps.Clone(b.attributes)
	}
	return ret
}

func (b branch) render() string {
	keys := maps.Keys(b.attributes)
	slices.Sort(keys)
	conds := make([]string, 0, len(keys)+len(b.predicates))
	for _, k := range keys {
		conds = append(conds, "@"+k+"="+Quote(b.attributes[k]))
	}
	conds = append(conds, b.predicates...)
	if len(conds) == 0 {
		return b.tag
	}
	return b.tag + "[" + strings.Join(conds, " and ") + "]"
}

// Quote renders s as an XPath 1.0 string literal. XPath has no escape sequences, so a value
// containing both quote characters is built with concat().
func Quote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
