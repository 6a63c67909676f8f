package cli

// OutputFormat represents the supported output formats for listing commands.
type OutputFormat string

const (
	// OutputFormatTable renders a rounded table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON renders raw JSON.
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatTable, OutputFormatJSON:
		return OutputFormat(s), nil
	default:
		return "", NewUsageError("unsupported output format %q (valid: table, json)", s)
	}
}
