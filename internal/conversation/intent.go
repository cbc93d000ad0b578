package conversation

import "strings"

// Intent is a classified user action.
type Intent string

const (
	IntentLaunch   Intent = "launch"
	IntentDownload Intent = "download"
	IntentYes      Intent = "yes"
	IntentNo       Intent = "no"
	IntentHelp     Intent = "help"
	IntentCancel   Intent = "cancel"
	IntentFallback Intent = "fallback"
)

// ClassifyIntent maps a platform intent name onto one of the engine's
// intents by case-insensitive substring match. Platforms disagree on
// naming ("AMAZON.YesIntent", "confirm", "DownloadIntent"), so substring
// matching in a fixed priority order covers all of them. Anything
// unrecognized falls back.
func ClassifyIntent(name string) Intent {
	n := strings.ToLower(name)

	switch {
	case strings.Contains(n, "launch") || n == "default welcome intent":
		return IntentLaunch
	case strings.Contains(n, "download") || strings.Contains(n, "request"):
		return IntentDownload
	case strings.Contains(n, "yes") || n == "confirm":
		return IntentYes
	case strings.Contains(n, "no") || n == "reject":
		return IntentNo
	case strings.Contains(n, "help"):
		return IntentHelp
	case strings.Contains(n, "cancel") || strings.Contains(n, "stop") || strings.Contains(n, "exit"):
		return IntentCancel
	default:
		return IntentFallback
	}
}
