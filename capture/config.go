package capture

import (
	"os"
	"strconv"
	"strings"
)

// Config holds capture settings read from the environment. Command-line
// flags override these.
type Config struct {
	Input           string  // image or video path; empty selects the webcam
	Device          int     // webcam index
	GridWidth       int     // output width in characters
	Ramp            string  // character ramp name
	FPS             float64 // pacing rate
	Mirror          bool
	Segment         bool
	SkipSimilar     bool
	MaxHashDistance int
	Workers         int
	LogLevel        string
}

// LoadConfig reads ASCIICAM_* variables, falling back to defaults.
func LoadConfig() *Config {
	return &Config{
		Input:           getEnv("ASCIICAM_INPUT", ""),
		Device:          getEnvInt("ASCIICAM_DEVICE", 0),
		GridWidth:       getEnvInt("ASCIICAM_WIDTH", 120),
		Ramp:            getEnv("ASCIICAM_RAMP", "standard"),
		FPS:             getEnvFloat("ASCIICAM_FPS", DefaultFPS),
		Mirror:          getEnvBool("ASCIICAM_MIRROR", true),
		Segment:         getEnvBool("ASCIICAM_SEGMENT", false),
		SkipSimilar:     getEnvBool("ASCIICAM_SKIP_SIMILAR", false),
		MaxHashDistance: getEnvInt("ASCIICAM_MAX_HASH_DISTANCE", DefaultMaxHashDistance),
		Workers:         getEnvInt("ASCIICAM_WORKERS", 0),
		LogLevel:        getEnv("ASCIICAM_LOG_LEVEL", "warn"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := strings.ToLower(os.Getenv(key)); v != "" {
		return v == "true" || v == "1" || v == "yes"
	}
	return def
}
