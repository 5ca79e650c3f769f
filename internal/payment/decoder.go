package payment

import (
	"net/url"
	"strings"
)

// Labels recognised in a gateway reply body.
const (
	ErrorLabel   = "error"
	TokenLabel   = "token"
	MessageLabel = "errorMessage"
)

// ParseBody splits a URL-encoded body into fields in order of first
// appearance. A repeated name keeps its first position and takes the last
// value, the same way most form decoders behave.
// Pairs with an empty name are dropped.
func ParseBody(body string) []Field {
	var fields []Field
	index := make(map[string]int)

	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name := unescape(rawName)
		if name == "" {
			continue
		}
		value := unescape(rawValue)

		if i, ok := index[name]; ok {
			fields[i].Value = value
			continue
		}
		index[name] = len(fields)
		fields = append(fields, Field{Name: name, Value: value})
	}
	return fields
}

// unescape percent-decodes s, leaving it as-is (with '+' as space) when it
// holds a malformed escape.
func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return strings.ReplaceAll(s, "+", " ")
}

// Decode classifies the fields of a reply body and returns the outcome.
// sent is echoed into RequestParameters.
func Decode(body string, sent Fields) *DecodedOutcome {
	fields := ParseBody(body)
	out := &DecodedOutcome{
		RequestParameters: sent.Clone(),
		Body:              fields,
	}

	classified := false
	for _, f := range fields {
		switch f.Name {
		case ErrorLabel:
			if desc, ok := Describe(f.Value); ok {
				out.ErrorMessages = out.ErrorMessages.set(f.Value, desc)
			}
			out.Status = NewStatusCode(f.Value)
			classified = true
		case TokenLabel:
			out.Token = f.Value
			classified = true
		case MessageLabel:
			out.ErrorMessages = splitMessage(out.ErrorMessages, f.Value)
			classified = true
		}
	}

	// A reply with no recognised label gets one chance: the first field name
	// may itself be an error code.
	if !classified && len(fields) > 0 {
		if code, ok := ApproximateCode(fields[0].Name); ok {
			desc, _ := Describe(code)
			out.Status = NewStatusCode(code)
			out.ErrorMessages = out.ErrorMessages.set(code, desc)
		}
	}

	return out
}

// splitMessage records "code:description" under code and then appends the
// unsplit message as a raw entry.
func splitMessage(m ErrorMessages, message string) ErrorMessages {
	if code, desc, ok := strings.Cut(message, ":"); ok {
		m = m.set(code, desc)
	}
	return m.appendRaw(message)
}
