package tts

// ElevenLabsVoices maps preset names to ElevenLabs voice IDs.
var ElevenLabsVoices = map[string]string{
	"charlotte": "XB0fDUnXU5powFXDhCwa", // British female, warm
	"aria":      "9BWtsMINqrJLrRacOk9x", // American female, expressive
	"sarah":     "EXAVITQu4vr4xnSDxMaL", // American female, soft
	"rachel":    "21m00Tcm4TlvDq8ikWAM", // American female, calm
	"josh":      "TxGEqnHWrfWFTfGW9XjX", // American male, deep
	"adam":      "pNInz6obpgDQGcFmaJgB", // American male, deep
}

// DefaultElevenLabsVoice is used when no voice is configured.
const DefaultElevenLabsVoice = "charlotte"

// ResolveElevenLabsVoice returns the voice ID for a preset name, or name
// unchanged when it is already an ID. Empty resolves to the default preset.
func ResolveElevenLabsVoice(name string) string {
	if name == "" {
		name = DefaultElevenLabsVoice
	}
	if id, ok := ElevenLabsVoices[name]; ok {
		return id
	}
	return name
}
