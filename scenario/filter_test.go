package scenario

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFilters(t *testing.T) {
	for _, p := range []struct {
		run, skip   []string
		id          ID
		shouldMatch bool
	}{
		{nil, nil, nil, true},
		{nil, nil, ID{"JavaScript", "alert"}, true},

		{[]string{"Java"}, nil, ID{"JavaScript"}, true},
		{[]string{"Java"}, nil, ID{"Checkboxes"}, false},
		{[]string{"Java"}, nil, ID{"JavaScript", "anything"}, true},
		{[]string{"^alert$"}, nil, ID{"alert"}, true},
		{[]string{"^alert$"}, nil, ID{"multiple alerts"}, false},

		{[]string{"Java/prompt"}, nil, ID{"JavaScript"}, true},
		{[]string{"Java/prompt"}, nil, ID{"JavaScript", "prompt cancelled"}, true},
		{[]string{"Java/prompt"}, nil, ID{"JavaScript", "confirm"}, false},
		{[]string{"Java/prompt"}, nil, ID{"Checkboxes", "prompt"}, false},

		{[]string{"Java", "Check"}, nil, ID{"Checkboxes", "label after"}, true},
		{[]string{"Java", "Check"}, nil, ID{"Frames"}, false},

		{nil, []string{"Java"}, ID{"JavaScript"}, false},
		{nil, []string{"Java"}, ID{"JavaScript", "alert"}, false},
		{nil, []string{"Java"}, ID{"Checkboxes"}, true},
		{nil, []string{"Java/prompt"}, ID{"JavaScript"}, true},
		{nil, []string{"Java/prompt"}, ID{"JavaScript", "prompt"}, false},
		{nil, []string{"Java/prompt"}, ID{"JavaScript", "alert"}, true},

		{[]string{"Java"}, []string{"prompt"}, ID{"JavaScript"}, true},
		{[]string{"Java"}, []string{"Script"}, ID{"JavaScript"}, false},
	} {
		var r RegexFilters
		for _, s := range p.run {
			require.NoError(t, r.MustMatch.Set(s))
		}
		for _, s := range p.skip {
			require.NoError(t, r.MustNotMatch.Set(s))
		}
		t.Run(fmt.Sprintf("run=%s, skip=%s, id=%s", r.MustMatch, r.MustNotMatch, p.id), func(t *testing.T) {
			assert.Equal(t, p.shouldMatch, r.Match(p.id))
		})
	}
}

func TestInvalidPattern(t *testing.T) {
	var l IDPatternList
	assert.Error(t, l.Set("Java/("))
	assert.False(t, l.IsDefined())
}
