package payment

import (
	"regexp"
	"strings"
)

// CatalogVersion identifies the Przelewy24 API revision the error table follows.
const CatalogVersion = "3.2"

// SuccessCode is the value of the error field on a successful call.
const SuccessCode = "0"

// ErrorCode is a single entry in the gateway's error table.
type ErrorCode struct {
	Code        string
	Description string
}

// errorCatalog is the vendor error table, in the order the vendor publishes it.
var errorCatalog = []ErrorCode{
	{Code: "err00", Description: "Incorrect call"},
	{Code: "err01", Description: "Authorization answer confirmation was not received"},
	{Code: "err02", Description: "Authorization answer was not received"},
	{Code: "err03", Description: "This query has been already processed"},
	{Code: "err04", Description: "Authorization query incomplete or incorrect"},
	{Code: "err05", Description: "Store configuration cannot be read"},
	{Code: "err06", Description: "Saving of authorization query failed"},
	{Code: "err07", Description: "Another payment is being concluded"},
	{Code: "err08", Description: "Undetermined store connection status"},
	{Code: "err09", Description: "Permitted corrections amount has been exceeded"},
	{Code: "err10", Description: "Incorrect transaction value"},
	{Code: "err49", Description: "Too high transaction risk factor"},
	{Code: "err51", Description: "Incorrect reference method"},
	{Code: "err52", Description: "Incorrect feedback on session information"},
	{Code: "err53", Description: "Transaction error"},
	{Code: "err54", Description: "Incorrect transaction value"},
	{Code: "err55", Description: "Incorrect transaction id"},
	{Code: "err56", Description: "Incorrect card"},
	{Code: "err57", Description: "Incompatibility of TEST flag"},
	{Code: "err58", Description: "Incorrect sequence number"},
	{Code: "err101", Description: "Incorrect call"},
	{Code: "err102", Description: "Allowed transaction time has expired"},
	{Code: "err103", Description: "Incorrect transfer value"},
	{Code: "err104", Description: "Transaction awaiting confirmation"},
	{Code: "err105", Description: "Transaction finished after allowed time"},
	{Code: "err106", Description: "Transaction result verification error"},
	{Code: "err161", Description: "Transaction request terminated by user"},
	{Code: "err162", Description: "Transaction request terminated by user"},
}

var errorIndex = func() map[string]string {
	idx := make(map[string]string, len(errorCatalog))
	for _, e := range errorCatalog {
		idx[e.Code] = e.Description
	}
	return idx
}()

// ErrorCodes returns a copy of the error table.
func ErrorCodes() []ErrorCode {
	out := make([]ErrorCode, len(errorCatalog))
	copy(out, errorCatalog)
	return out
}

// Describe returns the description of a gateway error code.
func Describe(code string) (string, bool) {
	desc, ok := errorIndex[code]
	return desc, ok
}

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	embeddedErr = regexp.MustCompile(`err(\d+)`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
)

// ApproximateCode recovers a catalog code from a field name that is not one
// of the recognised labels, e.g. "ERR 04", "error_err101" or "52".
// Only the decoder's fallback path calls it.
func ApproximateCode(rawKey string) (string, bool) {
	key := nonAlnum.ReplaceAllString(strings.ToLower(rawKey), "")
	if key == "" {
		return "", false
	}
	if _, ok := errorIndex[key]; ok {
		return key, true
	}

	var digits string
	switch {
	case digitsOnly.MatchString(key):
		digits = key
	default:
		m := embeddedErr.FindStringSubmatch(key)
		if m == nil {
			return "", false
		}
		digits = m[1]
	}

	for _, candidate := range codeCandidates(digits) {
		if _, ok := errorIndex[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// codeCandidates expands "4" to err4, err04 and "004" to err004, err04, err4.
func codeCandidates(digits string) []string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	candidates := []string{"err" + digits}
	if len(trimmed) < 2 {
		candidates = append(candidates, "err0"+trimmed)
	}
	return append(candidates, "err"+trimmed)
}
