package payment

// StatusCode is the gateway status of a decoded reply. The zero value is
// indeterminate: the reply carried nothing a status could be taken from.
type StatusCode struct {
	value string
	set   bool
}

// NewStatusCode returns a determinate status code.
func NewStatusCode(code string) StatusCode {
	return StatusCode{value: code, set: true}
}

// Value returns the code and whether one was found.
func (s StatusCode) Value() (string, bool) {
	return s.value, s.set
}

// Indeterminate is true when no code was found.
func (s StatusCode) Indeterminate() bool {
	return !s.set
}

// Success is true only for an explicit SuccessCode.
func (s StatusCode) Success() bool {
	return s.set && s.value == SuccessCode
}

func (s StatusCode) String() string {
	if !s.set {
		return "indeterminate"
	}
	return s.value
}

// ErrorMessage is one error entry. Raw entries carry an unsplit errorMessage
// value and have no code.
type ErrorMessage struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description"`
	Raw         bool   `json:"raw,omitempty"`
}

// ErrorMessages keeps error entries in insertion order. Setting a code that
// is already present overwrites it in place.
type ErrorMessages []ErrorMessage

func (m ErrorMessages) set(code, description string) ErrorMessages {
	for i := range m {
		if !m[i].Raw && m[i].Code == code {
			m[i].Description = description
			return m
		}
	}
	return append(m, ErrorMessage{Code: code, Description: description})
}

func (m ErrorMessages) appendRaw(message string) ErrorMessages {
	return append(m, ErrorMessage{Description: message, Raw: true})
}

// Get returns the description recorded for code.
func (m ErrorMessages) Get(code string) (string, bool) {
	for _, e := range m {
		if !e.Raw && e.Code == code {
			return e.Description, true
		}
	}
	return "", false
}

// Raw returns the unsplit messages in order.
func (m ErrorMessages) Raw() []string {
	var out []string
	for _, e := range m {
		if e.Raw {
			out = append(out, e.Description)
		}
	}
	return out
}

// Map returns the keyed entries only.
func (m ErrorMessages) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, e := range m {
		if !e.Raw {
			out[e.Code] = e.Description
		}
	}
	return out
}

func (m ErrorMessages) Empty() bool {
	return len(m) == 0
}

// Field is one decoded name/value pair of a reply body.
type Field struct {
	Name  string
	Value string
}

// DecodedOutcome is the record a flow builds from one gateway reply.
// It is not shared once a flow returns.
type DecodedOutcome struct {
	Token             string
	Status            StatusCode
	ErrorMessages     ErrorMessages
	RequestParameters Fields
	ReceiveParameters Fields
	OrderID           string
	SessionID         string
	// Body holds every decoded field, recognised or not, in parse order.
	Body []Field
}

// Value returns the decoded value of a body field.
func (o *DecodedOutcome) Value(name string) (string, bool) {
	for _, f := range o.Body {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
