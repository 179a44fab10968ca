package render

import "strings"

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	IsValid bool
	Errors  []*Error
}

// Validate scans markup for structural problems the compiler would
// silently accept: an HTML comment opened and not closed on the same line
// outside a code fence, and a code fence left open at the end of input.
// It has no side effects.
func Validate(markup string) ValidationResult {
	var errs []*Error

	var f fence
	fenceLine := 0
	for i, line := range strings.Split(normalizeNewlines(markup), "\n") {
		n := i + 1
		wasOpen := f.Open()
		if f.Feed(strings.TrimSpace(line)) {
			if !wasOpen {
				fenceLine = n
			}
			continue
		}
		if f.Open() {
			continue
		}
		if open := strings.LastIndex(line, "<!--"); open >= 0 && !strings.Contains(line[open+4:], "-->") {
			errs = append(errs, &Error{
				Type:    ErrorParse,
				Message: "Unterminated HTML comment",
				Line:    n,
				Column:  open + 1,
			})
		}
	}
	if f.Open() {
		errs = append(errs, &Error{
			Type:    ErrorParse,
			Message: "Unterminated code block",
			Line:    fenceLine,
		})
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
