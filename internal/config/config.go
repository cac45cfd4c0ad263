// Package config loads go-g1 configuration from the environment and an
// optional YAML file named by G1_CONFIG.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the G1 demonstration rig.
const (
	DefaultRobotIP   = "192.168.123.164"
	DefaultRobotPort = 8000
	DefaultVolume    = 90
)

// Config is the resolved process configuration.
type Config struct {
	LogLevel string

	Robot struct {
		IP      string
		Port    int
		Timeout time.Duration
		Volume  int
	}

	Speech struct {
		// Backend selects the speech channel: "robot" or "local".
		Backend        string
		PlaybackMargin time.Duration
	}

	TTS struct {
		// Provider is "elevenlabs", "openai" or "chain" (ElevenLabs then OpenAI).
		Provider        string
		ElevenLabsKey   string
		ElevenLabsVoice string
		OpenAIKey       string
		OpenAIVoice     string
		CacheDir        string
		// Cooldown is how long a failed provider is skipped by the chain.
		Cooldown time.Duration
	}

	Gestures struct {
		// File overrides or extends the built-in gesture catalog.
		File string
	}

	Camera struct {
		Device  string
		Width   int
		Height  int
		FPS     int
		Quality int
	}

	Server struct {
		Port string
	}

	Show struct {
		Event string
	}
}

// Load reads configuration. A missing G1_CONFIG file is an error; an unset
// G1_CONFIG means environment and defaults only.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	c.LogLevel = v.GetString("log_level")

	c.Robot.IP = v.GetString("robot.ip")
	c.Robot.Port = v.GetInt("robot.port")
	c.Robot.Timeout = v.GetDuration("robot.timeout")
	c.Robot.Volume = v.GetInt("robot.volume")

	c.Speech.Backend = strings.ToLower(v.GetString("speech.backend"))
	c.Speech.PlaybackMargin = v.GetDuration("speech.playback_margin")

	c.TTS.Provider = strings.ToLower(v.GetString("tts.provider"))
	c.TTS.ElevenLabsKey = v.GetString("tts.elevenlabs_key")
	c.TTS.ElevenLabsVoice = v.GetString("tts.elevenlabs_voice")
	c.TTS.OpenAIKey = v.GetString("tts.openai_key")
	c.TTS.OpenAIVoice = v.GetString("tts.openai_voice")
	c.TTS.CacheDir = v.GetString("tts.cache_dir")
	c.TTS.Cooldown = v.GetDuration("tts.cooldown")

	c.Gestures.File = v.GetString("gestures.file")

	c.Camera.Device = v.GetString("camera.device")
	c.Camera.Width = v.GetInt("camera.width")
	c.Camera.Height = v.GetInt("camera.height")
	c.Camera.FPS = v.GetInt("camera.fps")
	c.Camera.Quality = v.GetInt("camera.quality")

	c.Server.Port = fmt.Sprint(v.Get("server.port"))

	c.Show.Event = v.GetString("show.event")

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("robot.ip", DefaultRobotIP)
	v.SetDefault("robot.port", DefaultRobotPort)
	v.SetDefault("robot.timeout", 10*time.Second)
	v.SetDefault("robot.volume", DefaultVolume)

	v.SetDefault("speech.backend", "robot")
	v.SetDefault("speech.playback_margin", 100*time.Millisecond)

	v.SetDefault("tts.provider", "chain")
	v.SetDefault("tts.openai_voice", "shimmer")
	v.SetDefault("tts.cooldown", 30*time.Second)

	v.SetDefault("camera.device", "/dev/video2")
	v.SetDefault("camera.width", 1280)
	v.SetDefault("camera.height", 720)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.quality", 80)

	v.SetDefault("server.port", 5555)

	v.SetDefault("show.event", "airshow")
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("config_file", "G1_CONFIG")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("robot.ip", "ROBOT_IP")
	_ = v.BindEnv("robot.port", "ROBOT_PORT")
	_ = v.BindEnv("robot.timeout", "ROBOT_TIMEOUT")
	_ = v.BindEnv("robot.volume", "G1_VOLUME")

	_ = v.BindEnv("speech.backend", "SPEECH_BACKEND")
	_ = v.BindEnv("speech.playback_margin", "PLAYBACK_MARGIN")

	_ = v.BindEnv("tts.provider", "TTS_PROVIDER")
	_ = v.BindEnv("tts.elevenlabs_key", "ELEVENLABS_API_KEY")
	_ = v.BindEnv("tts.elevenlabs_voice", "ELEVENLABS_VOICE_ID")
	_ = v.BindEnv("tts.openai_key", "OPENAI_API_KEY")
	_ = v.BindEnv("tts.openai_voice", "OPENAI_VOICE")
	_ = v.BindEnv("tts.cache_dir", "TTS_CACHE_DIR")
	_ = v.BindEnv("tts.cooldown", "TTS_COOLDOWN")

	_ = v.BindEnv("gestures.file", "GESTURES_FILE")

	_ = v.BindEnv("camera.device", "CAMERA_DEVICE")
	_ = v.BindEnv("camera.width", "CAMERA_WIDTH")
	_ = v.BindEnv("camera.height", "CAMERA_HEIGHT")
	_ = v.BindEnv("camera.fps", "CAMERA_FPS")
	_ = v.BindEnv("camera.quality", "CAMERA_QUALITY")

	_ = v.BindEnv("server.port", "SERVER_PORT")

	_ = v.BindEnv("show.event", "SHOW_EVENT")
}

// Validate checks value ranges that would otherwise fail late on the robot.
func (c *Config) Validate() error {
	if c.Robot.IP == "" {
		return fmt.Errorf("config: robot ip is required")
	}
	if c.Robot.Volume < 0 || c.Robot.Volume > 100 {
		return fmt.Errorf("config: volume must be 0-100, got %d", c.Robot.Volume)
	}
	switch c.Speech.Backend {
	case "robot", "local":
	default:
		return fmt.Errorf("config: speech backend must be 'robot' or 'local', got %q", c.Speech.Backend)
	}
	switch c.TTS.Provider {
	case "elevenlabs", "openai", "chain":
	default:
		return fmt.Errorf("config: unknown tts provider %q", c.TTS.Provider)
	}
	if c.Speech.PlaybackMargin < 0 {
		return fmt.Errorf("config: playback margin must not be negative")
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("config: camera fps must be positive, got %d", c.Camera.FPS)
	}
	return nil
}

// RobotAPIURL returns the robot bridge HTTP API URL.
func (c *Config) RobotAPIURL() string {
	return fmt.Sprintf("http://%s:%d", c.Robot.IP, c.Robot.Port)
}
