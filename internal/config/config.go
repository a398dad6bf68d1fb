// Package config loads settings from chapterize.yaml, environment
// variables and defaults, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyYTDLPPath          = "tools.ytdlp"
	KeyFFmpegPath         = "tools.ffmpeg"
	KeyFFprobePath        = "tools.ffprobe"
	KeyDataDir            = "dirs.data"
	KeyClipDir            = "dirs.clips"
	KeyDatabasePath       = "database.path"
	KeyGeminiAPIKey       = "api.gemini-key"
	KeyOpenAIAPIKey       = "api.openai-key"
	KeyYouTubeAPIKey      = "api.youtube-key"
	KeyGeminiModel        = "api.gemini-model"
	KeyWhisperModel       = "api.whisper-model"
	KeyCookiesFile        = "download.cookies-file"
	KeyCookiesFromBrowser = "download.cookies-from-browser"
	KeyPlayerClient       = "download.player-client"
	KeyCaptionLanguages   = "download.caption-langs"
	KeyProbeTimeout       = "download.probe-timeout"
	KeyDownloadTimeout    = "download.timeout"
	KeyClipParallelism    = "clips.parallelism"
	KeyLogLevel           = "log.level"
)

// Unprefixed environment variables honored on top of CHAPTERIZE_*,
// matching the usual provider conventions.
var envBindings = map[string]string{
	KeyGeminiAPIKey:       "GEMINI_API_KEY",
	KeyOpenAIAPIKey:       "OPENAI_API_KEY",
	KeyYouTubeAPIKey:      "YOUTUBE_API_KEY",
	KeyCookiesFile:        "YTDLP_COOKIES_FILE",
	KeyCookiesFromBrowser: "YTDLP_COOKIES_FROM_BROWSER",
}

// Config is the resolved application configuration.
type Config struct {
	YTDLPPath   string
	FFmpegPath  string
	FFprobePath string

	DataDir      string
	ClipDir      string
	DatabasePath string

	GeminiAPIKey  string
	OpenAIAPIKey  string
	YouTubeAPIKey string
	GeminiModel   string
	WhisperModel  string

	CookiesFile        string
	CookiesFromBrowser string
	PlayerClient       string
	CaptionLanguages   []string
	ProbeTimeout       time.Duration
	DownloadTimeout    time.Duration

	ClipParallelism int
	LogLevel        string
}

// Load resolves configuration from cfgFile (when given), otherwise from
// chapterize.yaml in the working directory or ~/.config/chapterize, with
// CHAPTERIZE_* and the bound provider environment variables on top. A
// missing config file is not an error unless it was named explicitly.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("chapterize")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "chapterize"))
		}
	}

	v.SetEnvPrefix("CHAPTERIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return Config{}, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	return Config{
		YTDLPPath:   v.GetString(KeyYTDLPPath),
		FFmpegPath:  v.GetString(KeyFFmpegPath),
		FFprobePath: v.GetString(KeyFFprobePath),

		DataDir:      v.GetString(KeyDataDir),
		ClipDir:      v.GetString(KeyClipDir),
		DatabasePath: v.GetString(KeyDatabasePath),

		GeminiAPIKey:  v.GetString(KeyGeminiAPIKey),
		OpenAIAPIKey:  v.GetString(KeyOpenAIAPIKey),
		YouTubeAPIKey: v.GetString(KeyYouTubeAPIKey),
		GeminiModel:   v.GetString(KeyGeminiModel),
		WhisperModel:  v.GetString(KeyWhisperModel),

		CookiesFile:        v.GetString(KeyCookiesFile),
		CookiesFromBrowser: v.GetString(KeyCookiesFromBrowser),
		PlayerClient:       v.GetString(KeyPlayerClient),
		CaptionLanguages:   v.GetStringSlice(KeyCaptionLanguages),
		ProbeTimeout:       v.GetDuration(KeyProbeTimeout),
		DownloadTimeout:    v.GetDuration(KeyDownloadTimeout),

		ClipParallelism: v.GetInt(KeyClipParallelism),
		LogLevel:        v.GetString(KeyLogLevel),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyYTDLPPath, "yt-dlp")
	v.SetDefault(KeyFFmpegPath, "ffmpeg")
	v.SetDefault(KeyFFprobePath, "ffprobe")
	v.SetDefault(KeyDataDir, filepath.Join("data", "videos"))
	v.SetDefault(KeyClipDir, filepath.Join("data", "clips"))
	v.SetDefault(KeyDatabasePath, filepath.Join("data", "chapterize.db"))
	v.SetDefault(KeyGeminiModel, "gemini-1.5-flash-latest")
	v.SetDefault(KeyWhisperModel, "whisper-1")
	v.SetDefault(KeyPlayerClient, "web")
	v.SetDefault(KeyProbeTimeout, 15*time.Second)
	v.SetDefault(KeyDownloadTimeout, 90*time.Second)
	v.SetDefault(KeyClipParallelism, 2)
	v.SetDefault(KeyLogLevel, "info")
}
