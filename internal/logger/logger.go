package logger

// Logger is the structured logging interface used across the
// application. The component name groups related log lines so a single
// stream stays filterable.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}
