package payment

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// callbackChecksumFields are the callback fields covered by p24_sign, in signing order.
var callbackChecksumFields = []string{FieldSessionID, FieldOrderID, FieldAmount, FieldCurrency}

// Checksum joins values and crc with "|" and returns the lowercase hex MD5.
func Checksum(crc string, values ...string) string {
	parts := make([]string, 0, len(values)+1)
	parts = append(parts, values...)
	parts = append(parts, crc)
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum recomputes the callback signature with creds.CRC and compares
// it to p24_sign. Missing fields fail verification.
func VerifyChecksum(callback Fields, creds Credentials) bool {
	given, ok := callback[FieldSign]
	if !ok || given == "" {
		return false
	}

	values := make([]string, 0, len(callbackChecksumFields))
	for _, name := range callbackChecksumFields {
		v, ok := callback[name]
		if !ok {
			return false
		}
		values = append(values, v)
	}

	expected := Checksum(creds.CRC, values...)
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}
