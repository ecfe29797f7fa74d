package ddlog

import "github.com/ustudio/datadog-logger/pkg/logx"

// AlertType is Datadog's event severity vocabulary.
type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertError   AlertType = "error"
)

var levelAlertTypes = map[logx.Level]AlertType{
	logx.LevelDebug:    AlertInfo,
	logx.LevelInfo:     AlertInfo,
	logx.LevelWarn:     AlertWarning,
	logx.LevelError:    AlertError,
	logx.LevelCritical: AlertError,
}

// AlertTypeFor maps a log level to an alert type. Levels outside
// debug..critical have no alert type.
func AlertTypeFor(level logx.Level) (AlertType, bool) {
	at, ok := levelAlertTypes[level]
	return at, ok
}
