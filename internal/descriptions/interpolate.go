package descriptions

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// Interpolate replaces each {name} in template with params[name]. Values are
// inserted verbatim. Placeholders without a matching parameter are left as
// literal text.
func Interpolate(template string, params map[string]string) string {
	if len(params) == 0 {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := params[name]; ok {
			return value
		}
		return match
	})
}
