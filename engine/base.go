package engine

import (
	"errors"
	"fmt"

	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/locator"
	"github.com/webunit/testing-engine/navigation"
)

// Base holds the state every backend shares: configuration, navigation context and dialog
// queue. Backends embed *Base, which implements the parts of TestingEngine that do not touch
// a page.
type Base struct {
	config  Config
	backend Backend
	state   *navigation.State
	dialogs *dialog.Queue
	logger  framework.Logger
}

// NewBase creates the shared state for a backend.
func NewBase(backend Backend, config Config, logger framework.Logger) *Base {
	logger = framework.OrNullLogger(logger)
	return &Base{
		config:  config,
		backend: backend,
		state:   navigation.NewState(),
		dialogs: dialog.NewQueue(framework.LoggerWithPrefix(logger, "[dialogs] ")),
		logger:  logger,
	}
}

func (b *Base) Backend() Backend { return b.backend }

func (b *Base) Config() Config { return b.config }

func (b *Base) Scope() Scope { return b.state }

// State gives backends mutable access to the navigation context.
func (b *Base) State() *navigation.State { return b.state }

// DialogQueue gives backends access to the dialog queue.
func (b *Base) DialogQueue() *dialog.Queue { return b.dialogs }

func (b *Base) Logger() framework.Logger { return b.logger }

// Unsupported returns the error for an operation this backend cannot perform.
func (b *Base) Unsupported(operation string) error {
	return framework.UnsupportedOperationError{Operation: operation, Backend: string(b.backend)}
}

// Action runs fn as one user-level action: dialogs raised while it runs are matched against
// the queue, and if dialogs were expected but none appeared the result is
// ExpectedDialogMissingError. An error from fn takes precedence.
func (b *Base) Action(fn func() error) error {
	b.dialogs.BeginAction()
	err := fn()
	endErr := b.dialogs.EndAction()
	if err != nil {
		return err
	}
	return endErr
}

// LabelQuery builds the label lookup for checkboxes and radio buttons. With no explicit
// strategies it uses "for", nesting and then the configured placement.
func (b *Base) LabelQuery(text string, strategies ...locator.Strategy) locator.Label {
	if len(strategies) == 0 {
		placement, _ := b.config.DefaultPlacement()
		strategies = []locator.Strategy{locator.AssociationFor, locator.AssociationNested, placement}
	}
	sibling, _ := b.config.SiblingPolicy()
	return locator.ForLabel(text, Checkable(), strategies...).WithSiblingPolicy(sibling)
}

func (b *Base) SetWorkingForm(nameOrID string, index int) error {
	if index < 0 {
		return fmt.Errorf("invalid form index %d", index)
	}
	name := opt.None[string]()
	if nameOrID != "" {
		name = opt.Some(nameOrID)
	}
	b.state.SetWorkingForm(navigation.FormSelector{NameOrID: name, Index: index})
	return nil
}

func (b *Base) SetWorkingFormIndex(index int) error {
	return b.SetWorkingForm("", index)
}

func (b *Base) ClearWorkingForm() { b.state.ClearWorkingForm() }

func (b *Base) SetExpectedJavaScriptAlert(messages ...string) {
	for _, m := range messages {
		b.dialogs.Arm(dialog.Alert(m))
	}
}

func (b *Base) SetExpectedJavaScriptConfirm(message string, accept bool) {
	b.dialogs.Arm(dialog.Confirm(message, accept))
}

func (b *Base) SetExpectedJavaScriptPrompt(message string, input opt.Maybe[string]) {
	b.dialogs.Arm(dialog.Prompt(message, input))
}

func (b *Base) ExpectDialogs(expectations ...dialog.Expectation) {
	b.dialogs.Arm(expectations...)
}

func (b *Base) ClearExpectedDialogs() { b.dialogs.Clear() }

func (b *Base) PendingDialogs() []dialog.Expectation { return b.dialogs.Pending() }

func (b *Base) GetJavascriptAlert() (string, error) { return b.dialogs.TakeAlert() }

// ErrNoSession is returned by operations called before BeginAt or after CloseBrowser.
var ErrNoSession = errors.New("no page has been loaded; call BeginAt first")
