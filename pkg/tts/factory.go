package tts

import (
	"fmt"
	"log/slog"
	"time"
)

// Settings selects and configures providers by name.
type Settings struct {
	// Provider is "elevenlabs", "openai" or "chain".
	Provider string

	ElevenLabsKey   string
	ElevenLabsVoice string
	OpenAIKey       string
	OpenAIVoice     string

	// Cooldown is how long a failed chain member is skipped;
	// zero means DefaultCooldown.
	Cooldown time.Duration

	Logger *slog.Logger
}

// Open builds the configured provider. "chain" uses ElevenLabs first and
// falls back to OpenAI, skipping any provider without an API key.
func Open(s Settings) (Provider, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	elevenlabs := func() (Provider, error) {
		return NewElevenLabs(
			WithAPIKey(s.ElevenLabsKey),
			WithVoice(s.ElevenLabsVoice),
			WithLogger(logger),
		)
	}
	openai := func() (Provider, error) {
		return NewOpenAI(
			WithAPIKey(s.OpenAIKey),
			WithVoice(s.OpenAIVoice),
			WithLogger(logger),
		)
	}

	cooldown := s.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}

	switch s.Provider {
	case "elevenlabs":
		return elevenlabs()
	case "openai":
		return openai()
	case "chain", "":
		var members []Member
		if s.ElevenLabsKey != "" {
			p, err := elevenlabs()
			if err != nil {
				return nil, err
			}
			members = append(members, Member{Name: providerElevenLabs, Provider: p})
		}
		if s.OpenAIKey != "" {
			p, err := openai()
			if err != nil {
				return nil, err
			}
			members = append(members, Member{Name: providerOpenAI, Provider: p})
		}
		return NewChain(members, WithChainLogger(logger), WithCooldown(cooldown))
	default:
		return nil, fmt.Errorf("tts: unknown provider %q", s.Provider)
	}
}
