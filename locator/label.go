package locator

import (
	"fmt"
	"strings"
)

// Strategy is one way of associating a label with a form control.
type Strategy int

const (
	// AssociationFor is <label for="id"> pointing at the control's id.
	AssociationFor Strategy = iota
	// AssociationNested is a control nested inside the label element.
	AssociationNested
	// ControlBeforeLabel is a control that is an earlier sibling of the label.
	ControlBeforeLabel
	// ControlAfterLabel is a control that is a later sibling of the label.
	ControlAfterLabel
)

func (s Strategy) String() string {
	switch s {
	case AssociationFor:
		return "for"
	case AssociationNested:
		return "nested"
	case ControlBeforeLabel:
		return "controlBeforeLabel"
	case ControlAfterLabel:
		return "controlAfterLabel"
	}
	return "unknown"
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	for _, v := range []Strategy{AssociationFor, AssociationNested, ControlBeforeLabel, ControlAfterLabel} {
		if strings.EqualFold(v.String(), s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown label strategy %q", s)
}

// SiblingPolicy decides which sibling control belongs to a label when the control is not
// associated by "for" or by nesting.
type SiblingPolicy int

const (
	// SiblingNearest takes the closest compatible sibling in the label's parent, skipping over
	// unrelated elements such as <br>.
	SiblingNearest SiblingPolicy = iota
	// SiblingImmediate only accepts the adjacent element sibling.
	SiblingImmediate
)

func (p SiblingPolicy) String() string {
	if p == SiblingImmediate {
		return "immediate"
	}
	return "nearest"
}

// ParseSiblingPolicy is the inverse of SiblingPolicy.String.
func ParseSiblingPolicy(s string) (SiblingPolicy, error) {
	switch strings.ToLower(s) {
	case "", "nearest":
		return SiblingNearest, nil
	case "immediate":
		return SiblingImmediate, nil
	}
	return 0, fmt.Errorf("unknown sibling policy %q", s)
}

// Label locates a form control through the text of a <label> element.
type Label struct {
	text       string
	control    Locator
	strategies []Strategy
	sibling    SiblingPolicy
}

// ForLabel returns a label query. The control Locator describes which elements are acceptable
// controls; strategies are tried in the given order.
func ForLabel(text string, control Locator, strategies ...Strategy) Label {
	control.kind = ByLabelKind
	return Label{
		text:       strings.Join(strings.Fields(text), " "),
		control:    control,
		strategies: strategies,
	}
}

// WithSiblingPolicy returns a copy of the query using the given sibling policy.
func (lq Label) WithSiblingPolicy(p SiblingPolicy) Label {
	lq.sibling = p
	return lq
}

func (lq Label) Text() string { return lq.text }

func (lq Label) Strategies() []Strategy { return append([]Strategy(nil), lq.strategies...) }

// LabelXPath renders the expression for the label element itself.
func (lq Label) LabelXPath(scopePrefix string) string {
	return scopePrefix + "//label[normalize-space(.)=" + Quote(lq.text) + "]"
}

// ControlXPath renders the expression, relative to the label element, that finds the control
// for one of the structural strategies. AssociationFor depends on the label's attribute value
// and is handled by ResolveLabel.
func (lq Label) ControlXPath(s Strategy) string {
	cond := lq.control.Condition()
	var axis string
	switch s {
	case AssociationNested:
		return lq.control.XPath(".")
	case ControlBeforeLabel:
		axis = "preceding-sibling"
	case ControlAfterLabel:
		axis = "following-sibling"
	default:
		return ""
	}
	if lq.sibling == SiblingImmediate {
		return axis + "::*[1][" + cond + "]"
	}
	// On the preceding-sibling axis, position 1 is the nearest node.
	return axis + "::*[" + cond + "][1]"
}

func (lq Label) String() string {
	names := make([]string, 0, len(lq.strategies))
	for _, s := range lq.strategies {
		names = append(names, s.String())
	}
	return fmt.Sprintf("label %q (%s)", lq.text, strings.Join(names, ", "))
}
