package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// payload is a decoded JSON object whose keys are normalized once so that
// PascalCase, camelCase and snake_case spellings of a field all match.
// Conversion failures are collected per field and reported by Err.
type payload struct {
	fields map[string]any
	errs   validation.Errors
}

// normalizeKey lowercases a field name and drops '_' and '-'.
func normalizeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newPayload(raw map[string]any) *payload {
	p := &payload{fields: make(map[string]any, len(raw)), errs: validation.Errors{}}
	for k, v := range raw {
		p.fields[normalizeKey(k)] = v
	}
	return p
}

// readPayload decodes the request body as a JSON object.
func readPayload(e *core.RequestEvent) (*payload, error) {
	var raw map[string]any
	dec := json.NewDecoder(io.LimitReader(e.Request.Body, maxBodySize))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return newPayload(nil), nil
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return newPayload(raw), nil
}

func (p *payload) get(name string) (any, bool) {
	v, ok := p.fields[normalizeKey(name)]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether the field is present and not null.
func (p *payload) Has(name string) bool {
	_, ok := p.get(name)
	return ok
}

// String returns the trimmed string value of a field, or "".
func (p *payload) String(name string) string {
	v, ok := p.get(name)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		p.errs[name] = validation.NewError("invalid_string", "must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

// Decimal returns a numeric field as a decimal. Numeric strings such as
// "12.50" are accepted.
func (p *payload) Decimal(name string) decimal.Decimal {
	v, ok := p.get(name)
	if !ok {
		return decimal.Zero
	}
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			p.errs[name] = validation.NewError("invalid_number", "must be a number")
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			p.errs[name] = validation.NewError("invalid_number", "must be a number")
			return decimal.Zero
		}
		return d
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		p.errs[name] = validation.NewError("invalid_number", "must be a number")
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// DecimalOr returns the field, or def when the field is absent.
func (p *payload) DecimalOr(name string, def decimal.Decimal) decimal.Decimal {
	if !p.Has(name) {
		return def
	}
	return p.Decimal(name)
}

// Int returns an integer field. Fractional values are rejected.
func (p *payload) Int(name string) int {
	if !p.Has(name) {
		return 0
	}
	d := p.Decimal(name)
	if _, failed := p.errs[name]; failed {
		return 0
	}
	if !d.IsInteger() {
		p.errs[name] = validation.NewError("invalid_integer", "must be a whole number")
		return 0
	}
	return int(d.IntPart())
}

// Bool returns a boolean field; "true", "1" and 1 are accepted.
func (p *payload) Bool(name string) bool {
	v, ok := p.get(name)
	if !ok {
		return false
	}
	if n, isNum := v.(json.Number); isNum {
		v = n.String()
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		p.errs[name] = validation.NewError("invalid_bool", "must be true or false")
		return false
	}
	return b
}

// Strings returns a list of strings.
func (p *payload) Strings(name string) []string {
	v, ok := p.get(name)
	if !ok {
		return nil
	}
	list, err := cast.ToStringSliceE(v)
	if err != nil {
		p.errs[name] = validation.NewError("invalid_list", "must be a list of strings")
		return nil
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns a list of nested objects. Errors inside them are reported
// under "name[i].field".
func (p *payload) Objects(name string) []*payload {
	v, ok := p.get(name)
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		p.errs[name] = validation.NewError("invalid_list", "must be a list of objects")
		return nil
	}
	out := make([]*payload, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			p.errs[fmt.Sprintf("%s[%d]", name, i)] = validation.NewError("invalid_object", "must be an object")
			continue
		}
		out = append(out, newPayload(m))
	}
	return out
}

// Merge copies errors of a nested payload under the given prefix.
func (p *payload) Merge(prefix string, nested *payload) {
	for k, v := range nested.errs {
		p.errs[prefix+"."+k] = v
	}
}

// RequiredString returns a string field that must be non-blank and at most
// maxLen characters long.
func (p *payload) RequiredString(name string, maxLen int) string {
	s := p.String(name)
	if err := validation.Validate(s, validation.Required, validation.RuneLength(1, maxLen)); err != nil {
		p.errs[name] = err
	}
	return s
}

// NonNegative returns a decimal field that must be zero or higher.
func (p *payload) NonNegative(name string) decimal.Decimal {
	d := p.Decimal(name)
	if d.IsNegative() {
		p.Fail(name, "must be zero or higher")
	}
	return d
}

// Fail records a validation error for a field.
func (p *payload) Fail(name, message string) {
	p.errs[name] = validation.NewError("invalid", message)
}

// Err returns the collected field errors, or nil.
func (p *payload) Err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs
}
