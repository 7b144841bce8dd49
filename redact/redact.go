// Package redact masks personally identifiable fields in log messages.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultFields are the PII fields masked when no explicit list is given.
var DefaultFields = []string{"name", "email", "phone", "ssn", "password"}

// DefaultMask replaces field values in redacted output.
const DefaultMask = "***"

// DefaultSeparator terminates field values in k=v formatted messages.
const DefaultSeparator = ";"

// Filter replaces the value of every field=value<separator> occurrence in
// message with mask, keeping the field name and separator. Values match
// non-greedily up to the next separator, every occurrence is redacted, and
// fields absent from the message are left alone. The field list order does
// not affect the result.
func Filter(fields []string, mask, message, separator string) string {
	if len(fields) == 0 {
		return message
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}

	re := regexp.MustCompile(fmt.Sprintf(`(%s)=[^%s]*`,
		strings.Join(quoted, "|"), regexp.QuoteMeta(separator)))

	return re.ReplaceAllStringFunc(message, func(m string) string {
		name, _, _ := strings.Cut(m, "=")
		return name + "=" + mask
	})
}
