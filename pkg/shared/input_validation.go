// pkg/shared/input_validation.go

package shared

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const MaxArgLength = 4096

var secretAssignPattern = regexp.MustCompile(`(?i)\b(password|token|secret|key)=[^&\s]+`)

// ValidateCommandArgs rejects positional arguments carrying control characters or absurd lengths.
func ValidateCommandArgs(args []string) error {
	for i, arg := range args {
		if len(arg) > MaxArgLength {
			return fmt.Errorf("argument %d too long: %d characters (max %d)", i+1, len(arg), MaxArgLength)
		}
		for _, r := range arg {
			if unicode.IsControl(r) && r != '\t' {
				return fmt.Errorf("argument %d contains control character %U", i+1, r)
			}
		}
	}
	return nil
}

// SanitizeForLogging strips credentials from URLs and key=value secrets before they reach a log line.
func SanitizeForLogging(input string) string {
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		if u.User != nil {
			u.User = url.User("REDACTED")
		}
		if u.RawQuery != "" {
			q := u.Query()
			for k := range q {
				lk := strings.ToLower(k)
				if strings.Contains(lk, "token") || strings.Contains(lk, "sig") || strings.Contains(lk, "key") || strings.Contains(lk, "password") {
					q.Set(k, "REDACTED")
				}
			}
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	return secretAssignPattern.ReplaceAllString(input, "$1=[REDACTED]")
}
