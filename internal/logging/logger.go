package logging

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	logger *slog.Logger
	level  slog.LevelVar
	once   sync.Once
)

func InitLogger() {
	once.Do(func() {
		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: &level,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == slog.TimeKey {
					attr.Value = slog.StringValue(attr.Value.Time().Format("2006-01-02T15:04:05"))
				}
				return attr
			},
		})
		logger = slog.New(handler)
	})
}

// SetLevel adjusts the minimum logged level by name (debug, info,
// warn, error). The default is info.
func SetLevel(name string) error {
	return level.UnmarshalText([]byte(name))
}

func GetLogger() *slog.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}

func StringField(key, value string) slog.Attr {
	return slog.String(key, value)
}

func IntField(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func DurationField(key string, value time.Duration) slog.Attr {
	return slog.String(key, value.String())
}

func ErrorField(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
