package httputil

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form is a parsed HTML login form: its resolved action and every named
// input with its current value.
type Form struct {
	Action string
	Method string
	Fields map[string]string
}

// ParseForm extracts the form matched by selector from doc. Relative
// actions are resolved against pageURL; a missing action posts back to the
// page itself.
func ParseForm(doc *goquery.Document, selector, pageURL string) (*Form, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("form %q not found", selector)
	}
	if !sel.Is("form") {
		sel = sel.Closest("form")
		if sel.Length() == 0 {
			return nil, fmt.Errorf("%q is not inside a form", selector)
		}
	}

	form := &Form{
		Action: pageURL,
		Method: strings.ToUpper(sel.AttrOr("method", "POST")),
		Fields: make(map[string]string),
	}
	if action := strings.TrimSpace(sel.AttrOr("action", "")); action != "" {
		form.Action = ResolveReference(pageURL, action)
	}

	sel.Find("input").Each(func(_ int, in *goquery.Selection) {
		name, ok := in.Attr("name")
		if !ok || name == "" {
			return
		}
		switch strings.ToLower(in.AttrOr("type", "text")) {
		case "submit", "button", "image", "reset", "file":
			return
		case "checkbox", "radio":
			if _, checked := in.Attr("checked"); !checked {
				return
			}
		}
		form.Fields[name] = in.AttrOr("value", "")
	})

	return form, nil
}

// InputName returns the name of the first input inside the element matched
// by container. Login pages often wrap inputs in a div carrying the stable id.
func InputName(doc *goquery.Document, container string) (string, error) {
	sel := doc.Find(container)
	in := sel.Filter("input")
	if in.Length() == 0 {
		in = sel.Find("input")
	}
	name, ok := in.First().Attr("name")
	if !ok || name == "" {
		return "", fmt.Errorf("no named input in %q", container)
	}
	return name, nil
}
