package logfields

import "log/slog"

// Canonical log field names shared by the build, serve and CLI packages.
const (
	KeyPath       = "path"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyKind       = "kind"
	KeyURL        = "url"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
