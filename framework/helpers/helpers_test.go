package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/webunit/testing-engine/framework/opt"
)

func makePollTestFn[V any](initialValue, finalValue V, countBeforeFinalValue int) func() V {
	counter := 0
	return func() V {
		counter++
		if counter <= countBeforeFinalValue {
			return initialValue
		}
		return finalValue
	}
}

func TestPollForSpecificResultValue(t *testing.T) {
	t.Run("value is seen immediately", func(t *testing.T) {
		assert.True(t, PollForSpecificResultValue(makePollTestFn("a", "b", 0), time.Millisecond, time.Hour, "b"))
	})

	t.Run("value is seen", func(t *testing.T) {
		assert.True(t, PollForSpecificResultValue(makePollTestFn("a", "b", 2), time.Second, time.Millisecond, "b"))
	})

	t.Run("value is not seen", func(t *testing.T) {
		assert.False(t, PollForSpecificResultValue(makePollTestFn("a", "b", 1000), time.Millisecond*10,
			time.Millisecond, "b"))
	})
}

func TestChannels(t *testing.T) {
	ch := make(chan string, 1)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Millisecond))
	assert.True(t, NonBlockingSend(ch, "a"))
	assert.False(t, NonBlockingSend(ch, "b"))
	assert.Equal(t, opt.Some("a"), TryReceive(ch, time.Millisecond))

	closed := make(chan string)
	close(closed)
	assert.Equal(t, opt.None[string](), TryReceive(closed, time.Millisecond))
}

func TestRequireValue(t *testing.T) {
	tr := TestRecorder{PanicOnTerminate: true}
	ch := make(chan int, 1)
	assert.PanicsWithValue(t, &tr, func() { _ = RequireValue(&tr, ch, time.Millisecond, "no value for %s", "x") })
	assert.Equal(t, errors.New("no value for x"), tr.Err())

	ch <- 3
	var tr2 TestRecorder
	assert.Equal(t, 3, RequireValue(&tr2, ch, time.Millisecond, "no value"))
	assert.NoError(t, tr2.Err())
}

func TestGenerics(t *testing.T) {
	assert.Equal(t, "a", IfElse(true, "a", "b"))
	assert.Equal(t, "b", IfElse(false, "a", "b"))

	in := []string{"b", "a"}
	assert.Equal(t, []string{"a", "b"}, Sorted(in))
	assert.Equal(t, []string{"b", "a"}, in)
	assert.Equal(t, []string{"b", "a"}, Deduplicate([]string{"b", "a", "b"}))
}

type target struct{ name string }

func TestApplyOptions(t *testing.T) {
	var x target
	err := ApplyOptions(&x, ConfigOptionFunc[target](func(v *target) error { v.name = "a"; return nil }))
	assert.NoError(t, err)
	assert.Equal(t, "a", x.name)

	err = ApplyOptions(&x,
		ConfigOptionFunc[target](func(*target) error { return errors.New("bad") }),
		ConfigOptionFunc[target](func(v *target) error { v.name = "b"; return nil }),
	)
	assert.EqualError(t, err, "bad")
	assert.Equal(t, "a", x.name)
}
