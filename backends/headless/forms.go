package headless

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

func (e *Engine) SetTextField(name, value string) error {
	n, _, err := e.resolveControl(engine.TextField(name))
	if err != nil {
		return err
	}
	if _, readOnly := getAttr(n, "readonly"); readOnly {
		return fmt.Errorf("text field %q is read-only", name)
	}
	setControlValue(n, value)
	return nil
}

func (e *Engine) CheckCheckbox(name string) error {
	return e.setChecked(engine.Checkbox(name), true)
}

func (e *Engine) CheckCheckboxWithValue(name, value string) error {
	return e.setChecked(engine.CheckboxWithValue(name, value), true)
}

func (e *Engine) UncheckCheckbox(name string) error {
	return e.setChecked(engine.Checkbox(name), false)
}

func (e *Engine) UncheckCheckboxWithValue(name, value string) error {
	return e.setChecked(engine.CheckboxWithValue(name, value), false)
}

func (e *Engine) setChecked(l locator.Locator, checked bool) error {
	n, p, err := e.resolveControl(l)
	if err != nil {
		return err
	}
	return e.toggle(p, n, checked)
}

// toggle clicks a checkbox or radio button if its state differs from the wanted one. A radio
// button cannot be unchecked by clicking, so it is unchecked directly.
func (e *Engine) toggle(p *page, n *html.Node, checked bool) error {
	if hasAttr(n, "checked") == checked {
		return nil
	}
	if !checked && inputType(n) == "radio" {
		removeAttr(n, "checked")
		return nil
	}
	return e.act(func() error { return e.click(p, n) })
}

func (e *Engine) CheckCheckboxWithLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label), true)
}

func (e *Engine) CheckCheckboxBeforeLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label, locator.ControlBeforeLabel), true)
}

func (e *Engine) CheckCheckboxAfterLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label, locator.ControlAfterLabel), true)
}

func (e *Engine) UncheckCheckboxWithLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label), false)
}

func (e *Engine) setCheckedByLabel(lq locator.Label, checked bool) error {
	f, p, err := e.labelFinder(lq)
	if err != nil {
		return err
	}
	n, err := locator.ResolveLabel[*html.Node](f, lq)
	if err != nil {
		return err
	}
	return e.toggle(p, n, checked)
}

func (e *Engine) SelectOptions(selectName string, values ...string) error {
	sel, p, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return err
	}
	multiple := hasAttr(sel, "multiple")
	if !multiple && len(values) > 1 {
		return fmt.Errorf("select %q allows only one option but %d were given", selectName, len(values))
	}
	chosen, err := resolveOptions(sel, values)
	if err != nil {
		return err
	}
	if !multiple {
		for _, o := range options(sel) {
			removeAttr(o, "selected")
		}
	}
	for _, o := range chosen {
		setFlag(o, "selected", true)
	}
	return e.fireChange(p, sel)
}

func (e *Engine) UnselectOptions(selectName string, values ...string) error {
	sel, p, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return err
	}
	chosen, err := resolveOptions(sel, values)
	if err != nil {
		return err
	}
	for _, o := range chosen {
		removeAttr(o, "selected")
	}
	return e.fireChange(p, sel)
}

func resolveOptions(sel *html.Node, values []string) ([]*html.Node, error) {
	chosen := make([]*html.Node, 0, len(values))
	for _, v := range values {
		o, err := locator.Resolve[*html.Node](finder{root: sel}, engine.OptionWithValue(v))
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, o)
	}
	return chosen, nil
}

func (e *Engine) fireChange(p *page, n *html.Node) error {
	code, ok := getAttr(n, "onchange")
	if !ok || !e.scripting {
		return nil
	}
	return e.act(func() error {
		_, err := p.scriptHost(e).runHandler(n, code)
		return err
	})
}

func (e *Engine) ClickRadioOption(group, value string) error {
	n, p, err := e.resolveControl(engine.RadioOption(group, value))
	if err != nil {
		return err
	}
	return e.act(func() error { return e.click(p, n) })
}

// Submit submits the working form, or the first form. If the form has exactly one submit
// button, it is used as the submitter.
func (e *Engine) Submit() error {
	form, p, err := e.formForAction()
	if err != nil {
		return err
	}
	buttons, err := locator.ResolveAll[*html.Node](finder{root: form}, engine.SubmitButtons())
	if err != nil {
		return err
	}
	var submitter *html.Node
	if len(buttons) == 1 {
		submitter = buttons[0]
	}
	return e.act(func() error { return e.submit(p, form, submitter) })
}

func (e *Engine) SubmitWithButton(nameOrID string) error {
	return e.clickSubmitter(engine.SubmitButton(nameOrID))
}

func (e *Engine) SubmitWithButtonValue(nameOrID, value string) error {
	return e.clickSubmitter(engine.SubmitButtonWithValue(nameOrID, value))
}

func (e *Engine) clickSubmitter(l locator.Locator) error {
	n, p, err := e.resolveControl(l)
	if err != nil {
		return err
	}
	if ancestor(n, "form") == nil {
		return framework.ElementNotFoundError{Locator: l.String(), Detail: "button is not inside a form"}
	}
	return e.act(func() error { return e.click(p, n) })
}

func (e *Engine) Reset() error {
	form, p, err := e.formForAction()
	if err != nil {
		return err
	}
	p.reset(form)
	return nil
}

// reset restores the controls of a form to the state they had when the page loaded.
func (p *page) reset(form *html.Node) {
	for _, n := range htmlquery.Find(form, ".//input | .//textarea | .//option") {
		d, ok := p.defaults[n]
		if !ok {
			continue
		}
		switch {
		case n.Data == "option":
			setFlag(n, "selected", d.selected)
		case isCheckable(n):
			setFlag(n, "checked", d.checked)
		default:
			setControlValue(n, d.value)
		}
	}
}

type formField struct {
	name  string
	value string
	file  bool
}

// formFields collects the successful controls of a form in document order.
func formFields(form, submitter *html.Node) []formField {
	var fields []formField
	for _, n := range htmlquery.Find(form, ".//input | .//textarea | .//select | .//button") {
		name := htmlquery.SelectAttr(n, "name")
		if hasAttr(n, "disabled") {
			continue
		}
		switch n.Data {
		case "textarea":
			if name != "" {
				fields = append(fields, formField{name: name, value: controlValue(n)})
			}
		case "select":
			if name != "" {
				for _, o := range selectedOptions(n) {
					fields = append(fields, formField{name: name, value: optionValue(o)})
				}
			}
		case "button":
			if n == submitter && name != "" {
				fields = append(fields, formField{name: name, value: htmlquery.SelectAttr(n, "value")})
			}
		case "input":
			switch t := inputType(n); t {
			case "submit":
				if n == submitter && name != "" {
					fields = append(fields, formField{name: name, value: htmlquery.SelectAttr(n, "value")})
				}
			case "image":
				if n == submitter {
					prefix := imageFieldPrefix(name)
					fields = append(fields, formField{name: prefix + "x", value: "0"}, formField{name: prefix + "y", value: "0"})
				}
			case "reset", "button":
			case "checkbox", "radio":
				if name != "" && hasAttr(n, "checked") {
					fields = append(fields, formField{name: name, value: controlValue(n)})
				}
			case "file":
				if name != "" {
					fields = append(fields, formField{name: name, value: controlValue(n), file: true})
				}
			default:
				if name != "" {
					fields = append(fields, formField{name: name, value: controlValue(n)})
				}
			}
		}
	}
	return fields
}

func imageFieldPrefix(name string) string {
	if name == "" {
		return ""
	}
	return name + "."
}

// submit sends a form. The submitter, if not nil, is the button that contributes its name and
// value.
func (e *Engine) submit(p *page, form, submitter *html.Node) error {
	if code, ok := getAttr(form, "onsubmit"); ok && e.scripting {
		proceed, err := p.scriptHost(e).runHandler(form, code)
		if err != nil || !proceed {
			return err
		}
	}
	action, err := p.resolve(htmlquery.SelectAttr(form, "action"))
	if err != nil {
		return err
	}
	method := strings.ToUpper(htmlquery.SelectAttr(form, "method"))
	if method == "" {
		method = http.MethodGet
	}
	fields := formFields(form, submitter)
	req := request{method: method, url: action, referer: p.url.String()}

	switch {
	case method != http.MethodPost:
		values := url.Values{}
		for _, f := range fields {
			values.Add(f.name, f.value)
		}
		u := *action
		u.RawQuery = values.Encode()
		req.method = http.MethodGet
		req.url = &u
	case strings.EqualFold(htmlquery.SelectAttr(form, "enctype"), "multipart/form-data"):
		body, contentType, err := multipartBody(fields)
		if err != nil {
			return err
		}
		req.body, req.contentType = body, contentType
	default:
		values := url.Values{}
		for _, f := range fields {
			values.Add(f.name, f.value)
		}
		req.body = []byte(values.Encode())
		req.contentType = "application/x-www-form-urlencoded"
	}
	e.Logger().Printf("Submitting %s", describeForm(form))
	return e.navigate(p, htmlquery.SelectAttr(form, "target"), req)
}

// multipartBody encodes the fields as multipart/form-data. A file field whose value names a
// readable local file carries its content; otherwise it is sent empty.
func multipartBody(fields []formField) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if !f.file {
			if err := w.WriteField(f.name, f.value); err != nil {
				return nil, "", err
			}
			continue
		}
		filename := ""
		if f.value != "" {
			filename = filepath.Base(f.value)
		}
		part, err := w.CreateFormFile(f.name, filename)
		if err != nil {
			return nil, "", err
		}
		if data, err := os.ReadFile(f.value); err == nil {
			_, _ = part.Write(data)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func describeForm(form *html.Node) string {
	for _, attr := range []string{"name", "id"} {
		if v := htmlquery.SelectAttr(form, attr); v != "" {
			return fmt.Sprintf("form %q", v)
		}
	}
	return "form"
}
