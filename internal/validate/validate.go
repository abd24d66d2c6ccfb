// Package validate holds the input checks shared by the login, register and
// family-member forms. Everything here is pure: no I/O, no globals beyond
// compiled patterns.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLen     = 2
	nameMaxLen     = 50
	emailMaxLen    = 100
	passwordMinLen = 8
	ageMax         = 150
	sanitizeMaxLen = 100
)

var (
	nameRegexp  = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperRegexp = regexp.MustCompile(`[A-Z]`)
	lowerRegexp = regexp.MustCompile(`[a-z]`)
	digitRegexp = regexp.MustCompile(`\d`)

	// Plain decimal notation only: no exponents, hex or Inf.
	decimalRegexp = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// Result is the outcome of a single field check. Error is empty when Valid.
type Result struct {
	Valid bool
	Error string
}

// AgeResult is a Result that also carries the parsed age when one was given.
type AgeResult struct {
	Valid    bool
	Error    string
	Value    int
	HasValue bool
}

func ok() Result { return Result{Valid: true} }

func fail(msg string) Result { return Result{Error: msg} }

// Name checks a person's name after trimming surrounding whitespace.
func Name(name string) Result {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fail("Name is required")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < nameMinLen {
		return fail("Name must be at least 2 characters")
	}
	if n > nameMaxLen {
		return fail("Name must be less than 50 characters")
	}
	if !nameRegexp.MatchString(trimmed) {
		return fail("Name can only contain letters, spaces, hyphens, and apostrophes")
	}
	return ok()
}

// Email checks an address case-insensitively.
func Email(email string) Result {
	if strings.TrimSpace(email) == "" {
		return fail("Email is required")
	}

	normalized := NormalizeEmail(email)
	if utf8.RuneCountInString(normalized) > emailMaxLen {
		return fail("Email must be less than 100 characters")
	}
	if !emailRegexp.MatchString(normalized) {
		return fail("Please provide a valid email address")
	}
	return ok()
}

// NormalizeEmail trims and lower-cases an address the way it is sent to the backend.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Password requires 8+ characters with at least one upper-case letter, one
// lower-case letter and one digit. There is no upper bound.
func Password(password string) Result {
	if password == "" {
		return fail("Password is required")
	}
	if utf8.RuneCountInString(password) < passwordMinLen {
		return fail("Password must be at least 8 characters")
	}
	if !upperRegexp.MatchString(password) || !lowerRegexp.MatchString(password) || !digitRegexp.MatchString(password) {
		return fail("Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return ok()
}

// Age accepts an empty string as "no age given". Anything else must be a
// whole number between 0 and 150.
func Age(age string) AgeResult {
	trimmed := strings.TrimSpace(age)
	if trimmed == "" {
		return AgeResult{Valid: true}
	}

	if !decimalRegexp.MatchString(trimmed) {
		return AgeResult{Error: "Age must be a valid number"}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return AgeResult{Error: "Age must be a valid number"}
	}
	if f < 0 {
		return AgeResult{Error: "Age cannot be negative"}
	}
	if f > ageMax {
		return AgeResult{Error: "Age must be less than 150"}
	}
	if f != math.Trunc(f) {
		return AgeResult{Error: "Age must be a whole number"}
	}
	return AgeResult{Valid: true, Value: int(f), HasValue: true}
}

// SanitizeString trims input, drops angle brackets and caps it at 100
// characters. Templates still escape output; this is not the XSS defence.
func SanitizeString(input string) string {
	s := strings.TrimSpace(input)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if utf8.RuneCountInString(s) > sanitizeMaxLen {
		s = string([]rune(s)[:sanitizeMaxLen])
	}
	return s
}

// SanitizeNumber parses the leading integer of input. The second return is
// false for empty or non-numeric input.
func SanitizeNumber(input string) (int, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, false
	}

	end := 0
	if s[0] == '-' || s[0] == '+' {
		end = 1
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
