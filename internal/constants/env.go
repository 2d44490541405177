package constants

// Environment variables read by the configuration loader.
const (
	EnvProvider     = "CM_PROVIDER"
	EnvModel        = "CM_MODEL"
	EnvEmoji        = "CM_EMOJI"
	EnvMaxDiffLines = "CM_MAX_DIFF_LINES"
	EnvMinLength    = "CM_MIN_LENGTH"
	EnvMaxRetries   = "CM_MAX_RETRIES"
	EnvOpenRouter   = "OPENROUTER_API_KEY"
	EnvGoogle       = "GOOGLE_API_KEY"

	// EnvEditor and EnvVisual select the editor used for manual edits.
	EnvEditor = "EDITOR"
	EnvVisual = "VISUAL"
)
