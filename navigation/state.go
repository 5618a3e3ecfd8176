// Package navigation holds the per-engine navigation context: which window is active, which
// frame path is active within each window, and which form (if any) scopes form operations.
//
// State has no knowledge of documents. Backends read it to decide where to evaluate a locator
// and call its mutators when the user switches windows or frames, or when a page loads.
package navigation

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/locator"
)

// FormSelector identifies the working form: the Index-th form (0-based, document order)
// among those whose name or id equals NameOrID, or among all forms if NameOrID is undefined.
type FormSelector struct {
	NameOrID opt.Maybe[string]
	Index    int
}

// XPath renders the selector as an expression matching exactly the selected form.
func (f FormSelector) XPath() string {
	forms := "//form"
	if f.NameOrID.IsDefined() {
		q := locator.Quote(f.NameOrID.Value())
		forms = "//form[@name=" + q + " or @id=" + q + "]"
	}
	return fmt.Sprintf("(%s)[%d]", forms, f.Index+1)
}

func (f FormSelector) String() string {
	if f.NameOrID.IsDefined() {
		return fmt.Sprintf("form %q (index %d)", f.NameOrID.Value(), f.Index)
	}
	return fmt.Sprintf("form index %d", f.Index)
}

// State is the navigation context of one engine. It is not safe for concurrent use; an engine
// is driven from a single goroutine.
type State struct {
	window opt.Maybe[string]
	frames map[string][]string
	form   opt.Maybe[FormSelector]
}

// NewState returns a State positioned at the root window with no frame and no working form.
func NewState() *State {
	return &State{frames: make(map[string][]string)}
}

// Window returns the active window handle; undefined means the root window.
func (s *State) Window() opt.Maybe[string] { return s.window }

// FramePath returns the frame names from the top document of the active window down to the
// active frame. An empty path means the top document.
func (s *State) FramePath() []string {
	return slices.Clone(s.frames[s.windowKey()])
}

// Form returns the working form selector, if one is set.
func (s *State) Form() opt.Maybe[FormSelector] { return s.form }

// SetWindow makes the given window active. It restores that window's frame path and clears the
// working form. Selecting the window that is already active changes nothing and returns false.
func (s *State) SetWindow(handle opt.Maybe[string]) bool {
	if opt.Equal(handle, s.window) {
		return false
	}
	s.window = handle
	s.form = opt.None[FormSelector]()
	return true
}

// GotoRootWindow is SetWindow with the root window.
func (s *State) GotoRootWindow() bool {
	return s.SetWindow(opt.None[string]())
}

// ForgetWindow discards what is remembered about a closed window. If it was active, the root
// window becomes active.
func (s *State) ForgetWindow(handle string) {
	delete(s.frames, handle)
	if s.window.IsDefined() && s.window.Value() == handle {
		s.GotoRootWindow()
	}
}

// EnterFrame descends into a child frame of the active frame.
func (s *State) EnterFrame(name string) {
	s.SetFramePath(append(s.FramePath(), name))
}

// SetFramePath replaces the active window's frame path. The working form is cleared because a
// form selector only identifies a form within the document it was set in.
func (s *State) SetFramePath(path []string) {
	key := s.windowKey()
	if len(path) == 0 {
		delete(s.frames, key)
	} else {
		s.frames[key] = slices.Clone(path)
	}
	s.form = opt.None[FormSelector]()
}

// ExitFrames returns to the top document of the active window.
func (s *State) ExitFrames() { s.SetFramePath(nil) }

// SetWorkingForm scopes form operations to the selected form.
func (s *State) SetWorkingForm(f FormSelector) { s.form = opt.Some(f) }

// ClearWorkingForm removes form scoping. Form operations then use the first form of the active
// frame that has a match.
func (s *State) ClearWorkingForm() { s.form = opt.None[FormSelector]() }

// ResetForPageLoad is called when the active window navigates to a new top-level document.
// The window's frame path and the working form are cleared; the active window is kept.
func (s *State) ResetForPageLoad() {
	delete(s.frames, s.windowKey())
	s.form = opt.None[FormSelector]()
}

// ResetWindowForPageLoad is ResetForPageLoad for a window that may not be active. The
// window's frame path is cleared, and the working form too if the window is the active one.
func (s *State) ResetWindowForPageLoad(handle string) {
	delete(s.frames, handle)
	if handle == s.windowKey() {
		s.form = opt.None[FormSelector]()
	}
}

// FormXPath returns the working form's expression, or "" if no form is set.
func (s *State) FormXPath() string {
	if s.form.IsDefined() {
		return s.form.Value().XPath()
	}
	return ""
}

// ScopePrefix renders the whole active scope as one path, such as
// /frame[@name='top']/frame[@name='main'](//form[@name='f' or @id='f'])[1]. It identifies the
// scope in messages and logs; backends resolve frames and forms as separate steps.
func (s *State) ScopePrefix() string {
	var b strings.Builder
	for _, f := range s.FramePath() {
		b.WriteString("/frame[@name=" + locator.Quote(f) + "]")
	}
	b.WriteString(s.FormXPath())
	return b.String()
}

func (s *State) String() string {
	return fmt.Sprintf("window=%s frames=%v form=%s", s.window.OrElse("[root]"), s.FramePath(), s.form)
}

func (s *State) windowKey() string { return s.window.OrElse("") }
