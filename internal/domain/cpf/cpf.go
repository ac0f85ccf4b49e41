// Package cpf validates Brazilian national person identifiers (CPF).
//
// A CPF is 11 ASCII digits: a 9-digit base followed by two mod-11 check digits.
// Formatted input ("111.444.777-35") is not accepted; callers pass raw digits.
package cpf

// Length is the number of digits in a CPF.
const Length = 11

// BaseLength is the number of digits preceding the check digits.
const BaseLength = 9

// IsValid reports whether candidate is a structurally and arithmetically valid CPF.
// Malformed input is reported the same way as a checksum mismatch.
func IsValid(candidate string) bool {
	if len(candidate) != Length || !allDigits(candidate) {
		return false
	}
	// Repeated-digit strings are rejected explicitly, not left to the arithmetic.
	if allSame(candidate) {
		return false
	}
	want, ok := CheckDigits(candidate[:BaseLength])
	return ok && candidate[BaseLength:] == want
}

// CheckDigits computes the two check digits for a 9-digit base.
// It returns false when base is not exactly nine decimal digits.
func CheckDigits(base string) (string, bool) {
	if len(base) != BaseLength || !allDigits(base) {
		return "", false
	}
	d1 := checkDigit(base, 10)
	d2 := checkDigit(base+string(d1), 11)
	return string([]byte{d1, d2}), true
}

// checkDigit weights digits from firstWeight down to 2 and maps the mod-11 remainder to a digit byte.
func checkDigit(digits string, firstWeight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (firstWeight - i)
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
