// Package robot provides the actuator channels of a G1 humanoid and the
// advisory busy/idle token shared by everything that drives them.
//
// Interfaces are kept small so consumers depend only on the channel they
// use: the orchestrator needs SpeechChannel and MotionChannel, the control
// server additionally needs StatusChecker.
package robot

import "context"

// Language selects the voice of the on-robot TTS engine.
type Language int

const (
	LanguageChinese Language = 0
	LanguageEnglish Language = 1
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case LanguageChinese:
		return "chinese"
	case LanguageEnglish:
		return "english"
	default:
		return "unknown"
	}
}

// ParseLanguage maps "zh"/"chinese" and "en"/"english" to a Language.
// Anything else is English.
func ParseLanguage(s string) Language {
	switch s {
	case "zh", "cn", "chinese":
		return LanguageChinese
	default:
		return LanguageEnglish
	}
}

// SpeechChannel is the robot's audio actuator.
// Calls return when the robot acknowledges the command, not when sound ends.
type SpeechChannel interface {
	// Speak hands text to the on-robot TTS engine.
	Speak(ctx context.Context, text string, lang Language) error

	// Play streams 16 kHz mono PCM16 under clipID.
	Play(ctx context.Context, clipID string, pcm []byte) error

	// Stop ends playback of clipID.
	Stop(ctx context.Context, clipID string) error

	// SetVolume sets speaker volume (0-100).
	SetVolume(ctx context.Context, percent int) error
}

// MotionChannel is the robot's arm actuator.
type MotionChannel interface {
	// ExecuteAction runs a built-in arm action by id.
	ExecuteAction(ctx context.Context, actionID int) error

	// ExecuteCustom runs a named custom motion installed on the robot.
	ExecuteCustom(ctx context.Context, name string) error
}

// StatusChecker reports the bridge daemon state.
type StatusChecker interface {
	DaemonStatus(ctx context.Context) (string, error)
}

// Ensure HTTPController implements every channel.
var (
	_ SpeechChannel = (*HTTPController)(nil)
	_ MotionChannel = (*HTTPController)(nil)
	_ StatusChecker = (*HTTPController)(nil)
)
