package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Engine handles placeholder expansion in service configuration values.
// Placeholders use the form {{ .Destination }} or {{ Destination }} and are
// replaced with values from the expansion context.
type Engine struct {
	// Pattern to match template variables like {{ variableName }}
	templatePattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		templatePattern: regexp.MustCompile(`\{\{\s*\.?([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`),
	}
}

// Replace replaces all template variables in a value with actual values from the context
func (e *Engine) Replace(value interface{}, context map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.replaceStringTemplates(v, context)
	case []string:
		return e.replaceSliceTemplates(v, context)
	case map[string]string:
		return e.replaceMapTemplates(v, context)
	default:
		// Non-templatable types are returned as-is
		return value, nil
	}
}

// ReplaceString is a convenience wrapper for expanding a single string value.
func (e *Engine) ReplaceString(value string, context map[string]interface{}) (string, error) {
	return e.replaceStringTemplates(value, context)
}

// ReplaceSlice is a convenience wrapper for expanding every element of a
// string slice.
func (e *Engine) ReplaceSlice(value []string, context map[string]interface{}) ([]string, error) {
	return e.replaceSliceTemplates(value, context)
}

// ReplaceStringMap is a convenience wrapper for expanding every value of a
// string map. Keys are left untouched.
func (e *Engine) ReplaceStringMap(value map[string]string, context map[string]interface{}) (map[string]string, error) {
	return e.replaceMapTemplates(value, context)
}

// replaceStringTemplates replaces template variables in a string
func (e *Engine) replaceStringTemplates(template string, context map[string]interface{}) (string, error) {
	// Find all template variables
	matches := e.templatePattern.FindAllStringSubmatch(template, -1)

	// Track missing variables
	var missingVars []string

	result := template
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}

		varName := match[1]
		replacement, exists := context[varName]
		if !exists {
			missingVars = append(missingVars, varName)
			continue
		}

		// Convert replacement to string
		var replacementStr string
		switch r := replacement.(type) {
		case string:
			replacementStr = r
		case int, int32, int64:
			replacementStr = fmt.Sprintf("%d", r)
		case float32, float64:
			replacementStr = fmt.Sprintf("%f", r)
		case bool:
			replacementStr = fmt.Sprintf("%t", r)
		default:
			replacementStr = fmt.Sprintf("%v", r)
		}

		// Replace all occurrences of this variable (with and without dot prefix)
		placeholder := fmt.Sprintf("{{ %s }}", varName)
		result = strings.ReplaceAll(result, placeholder, replacementStr)

		placeholderWithDot := fmt.Sprintf("{{ .%s }}", varName)
		result = strings.ReplaceAll(result, placeholderWithDot, replacementStr)

		// Also handle version without spaces
		placeholderNoSpace := fmt.Sprintf("{{%s}}", varName)
		result = strings.ReplaceAll(result, placeholderNoSpace, replacementStr)

		placeholderNoSpaceWithDot := fmt.Sprintf("{{.%s}}", varName)
		result = strings.ReplaceAll(result, placeholderNoSpaceWithDot, replacementStr)
	}

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missingVars, ", "))
	}

	return result, nil
}

// replaceSliceTemplates replaces templates in each element of a string slice
func (e *Engine) replaceSliceTemplates(s []string, context map[string]interface{}) ([]string, error) {
	result := make([]string, len(s))

	for i, value := range s {
		replaced, err := e.replaceStringTemplates(value, context)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replaced
	}

	return result, nil
}

// replaceMapTemplates replaces templates in each value of a string map
func (e *Engine) replaceMapTemplates(m map[string]string, context map[string]interface{}) (map[string]string, error) {
	result := make(map[string]string, len(m))

	for key, value := range m {
		replaced, err := e.replaceStringTemplates(value, context)
		if err != nil {
			return nil, fmt.Errorf("error in key '%s': %w", key, err)
		}
		result[key] = replaced
	}

	return result, nil
}
