package core

// Logger is any service that can report application events.
// Implementations may inspect args for well-known types (e.g. a logged-in
// user) and attach them as structured context.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
