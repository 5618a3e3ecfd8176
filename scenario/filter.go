package scenario

import (
	"fmt"
	"regexp"
	"strings"
)

// RegexFilters selects scenarios by ID. A pattern has one regex per ID component, separated
// by "/", so "JavaScript/alert" matches the scenarios of any suite containing "JavaScript"
// whose names contain "alert".
type RegexFilters struct {
	MustMatch    IDPatternList
	MustNotMatch IDPatternList
}

func (r RegexFilters) Match(id ID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)) &&
		!r.MustNotMatch.AnyMatch(id, false)
}

type IDPattern []*regexp.Regexp

// Match tests the pattern against an ID. If includeParents is true, an ID that is shorter than
// the pattern matches when all of its components do, so a suite is entered when any of its
// scenarios might match.
func (p IDPattern) Match(id ID, includeParents bool) bool {
	n := len(p)
	if n > len(id) {
		if !includeParents {
			return false
		}
		n = len(id)
	}
	for i := 0; i < n; i++ {
		if !p[i].MatchString(id[i]) {
			return false
		}
	}
	return true
}

func (p IDPattern) String() string {
	ss := make([]string, 0, len(p))
	for _, c := range p {
		ss = append(ss, c.String())
	}
	return strings.Join(ss, "/")
}

func ParseIDPattern(s string) (IDPattern, error) {
	parts := strings.Split(s, "/")
	ret := make(IDPattern, 0, len(parts))
	for _, part := range parts {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}

type IDPatternList []IDPattern

func (l IDPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser.
func (l *IDPatternList) Set(value string) error {
	p, err := ParseIDPattern(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

func (l IDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l IDPatternList) AnyMatch(id ID, includeParents bool) bool {
	for _, p := range l {
		if p.Match(id, includeParents) {
			return true
		}
	}
	return false
}
