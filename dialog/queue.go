// Package dialog implements the queue of expected JavaScript dialogs (alert, confirm and
// prompt). A test arms the queue before an action; each dialog raised during the action must
// match the head of the queue and is answered with the response stored in the expectation.
package dialog

import (
	"fmt"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
)

// Kind is the type of a JavaScript dialog.
type Kind int

const (
	KindAlert Kind = iota
	KindConfirm
	KindPrompt
	// KindUnknown is reported by backends that cannot tell dialog types apart. It matches an
	// expectation of any kind, as long as the message matches.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindAlert:
		return "alert"
	case KindConfirm:
		return "confirm"
	case KindPrompt:
		return "prompt"
	}
	return "unknown"
}

// Expectation is one expected dialog and how to answer it.
type Expectation struct {
	Kind    Kind
	Message string
	// Accept is the answer to a confirm: OK (true) or Cancel (false).
	Accept bool
	// Input is the answer to a prompt. Undefined means the prompt is cancelled.
	Input opt.Maybe[string]
}

// Alert returns an expectation of an alert with the given message.
func Alert(message string) Expectation {
	return Expectation{Kind: KindAlert, Message: message, Accept: true}
}

// Confirm returns an expectation of a confirm dialog answered with accept.
func Confirm(message string, accept bool) Expectation {
	return Expectation{Kind: KindConfirm, Message: message, Accept: accept}
}

// Prompt returns an expectation of a prompt dialog answered with input, or cancelled if input
// is undefined.
func Prompt(message string, input opt.Maybe[string]) Expectation {
	return Expectation{Kind: KindPrompt, Message: message, Accept: input.IsDefined(), Input: input}
}

func (e Expectation) String() string {
	switch e.Kind {
	case KindConfirm:
		return fmt.Sprintf("confirm %q (answer %t)", e.Message, e.Accept)
	case KindPrompt:
		if e.Input.IsDefined() {
			return fmt.Sprintf("prompt %q (answer %q)", e.Message, e.Input.Value())
		}
		return fmt.Sprintf("prompt %q (cancel)", e.Message)
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Message)
}

// Response is what the backend must do with a dialog that matched an expectation.
type Response struct {
	Accept bool
	Input  opt.Maybe[string]
}

// Record is a dialog that was raised and answered.
type Record struct {
	Kind    Kind
	Message string
}

// State is the lifecycle position of the queue.
type State int

const (
	// StateEmpty means no dialogs are expected.
	StateEmpty State = iota
	// StateArmed means expectations are pending and no action is in progress.
	StateArmed
	// StateFiring means an action is in progress and dialogs are being matched.
	StateFiring
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateFiring:
		return "firing"
	}
	return "empty"
}

// Queue is the FIFO of expected dialogs for one engine. It is not safe for concurrent use.
type Queue struct {
	pending      []Expectation
	unread       []Record
	depth        int
	armedAtStart bool
	consumed     int
	logger       framework.Logger
}

// NewQueue returns an empty Queue.
func NewQueue(logger framework.Logger) *Queue {
	return &Queue{logger: framework.OrNullLogger(logger)}
}

// Arm appends expectations to the end of the queue.
func (q *Queue) Arm(expectations ...Expectation) {
	for _, e := range expectations {
		q.logger.Printf("Expecting %s", e)
	}
	q.pending = append(q.pending, expectations...)
}

// Clear discards all pending expectations.
func (q *Queue) Clear() {
	if len(q.pending) > 0 {
		q.logger.Printf("Discarding %d pending dialog expectation(s)", len(q.pending))
	}
	q.pending = nil
}

// Pending returns a copy of the expectations not yet consumed.
func (q *Queue) Pending() []Expectation {
	return append([]Expectation(nil), q.pending...)
}

func (q *Queue) State() State {
	switch {
	case q.depth > 0:
		return StateFiring
	case len(q.pending) > 0:
		return StateArmed
	}
	return StateEmpty
}

// BeginAction marks the start of a user-level action that may raise dialogs. Calls nest; only
// the outermost pair is significant.
func (q *Queue) BeginAction() {
	if q.depth == 0 {
		q.armedAtStart = len(q.pending) > 0
		q.consumed = 0
	}
	q.depth++
}

// EndAction marks the end of an action. If expectations were pending when the action began and
// the action consumed none of them, it returns ExpectedDialogMissingError; the expectations stay
// pending.
func (q *Queue) EndAction() error {
	if q.depth == 0 {
		return nil
	}
	q.depth--
	if q.depth > 0 || !q.armedAtStart || q.consumed > 0 || len(q.pending) == 0 {
		return nil
	}
	expected := make([]string, 0, len(q.pending))
	for _, e := range q.pending {
		expected = append(expected, e.String())
	}
	return framework.ExpectedDialogMissingError{Expected: expected}
}

// Fire matches a dialog raised by the page against the head of the queue. On a match the head
// is removed and its response returned; otherwise the result is UnexpectedDialogError and the
// queue is left as it was.
func (q *Queue) Fire(kind Kind, message string) (Response, error) {
	if len(q.pending) == 0 {
		q.logger.Printf("Unexpected %s dialog: %q", kind, message)
		return Response{}, framework.UnexpectedDialogError{Kind: kind.String(), Message: message}
	}
	head := q.pending[0]
	if (kind != KindUnknown && kind != head.Kind) || message != head.Message {
		q.logger.Printf("Dialog %s %q does not match expected %s", kind, message, head)
		return Response{}, framework.UnexpectedDialogError{
			Kind:     kind.String(),
			Message:  message,
			Expected: head.String(),
		}
	}
	q.pending = q.pending[1:]
	q.consumed++
	if head.Kind == KindAlert {
		q.unread = append(q.unread, Record{Kind: head.Kind, Message: message})
	}
	q.logger.Printf("Answered %s", head)
	return Response{Accept: head.Accept, Input: head.Input}, nil
}

// TakeAlert returns the oldest alert message that has not yet been retrieved, or
// ElementNotFoundError if there is none.
func (q *Queue) TakeAlert() (string, error) {
	if len(q.unread) == 0 {
		return "", framework.ElementNotFoundError{Locator: "javascript alert", Detail: "there is no pending alert"}
	}
	r := q.unread[0]
	q.unread = q.unread[1:]
	return r.Message, nil
}
