package app

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	LogLevel        string
	LogFormat       string

	FFMPEGPath    string
	FFProbePath   string
	FFMPEGThreads int // 0 = let FFmpeg decide

	MetadataDir string
	TempDir     string

	IntervalMs             int
	Widths                 []int
	TileWidth              int
	TileHeight             int
	JPEGQuality            int
	LocalMediaFolderSaving bool
	OnDemandGeneration     bool
	ScanIntervalMinutes    int // 0 = periodic scanning disabled

	CORSAllowedOrigins []string
}

// LoadConfig reads configuration from the environment, with a .env file in
// the working directory layered underneath when present.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "trickplay"),
		MongoCollection: getEnv("MONGO_COLLECTION", "items"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),

		FFMPEGPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		FFProbePath:   getEnv("FFPROBE_PATH", "ffprobe"),
		FFMPEGThreads: getEnvInt("FFMPEG_THREADS", 0),

		MetadataDir: getEnv("METADATA_DIR", "metadata"),
		TempDir:     getEnv("TEMP_DIR", ""),

		IntervalMs:             getEnvInt("TRICKPLAY_INTERVAL_MS", 10_000),
		Widths:                 getEnvIntList("TRICKPLAY_WIDTHS", []int{320}),
		TileWidth:              getEnvInt("TILE_GRID_WIDTH", 10),
		TileHeight:             getEnvInt("TILE_GRID_HEIGHT", 10),
		JPEGQuality:            getEnvInt("JPEG_QUALITY", 90),
		LocalMediaFolderSaving: getEnvBool("LOCAL_MEDIA_FOLDER_SAVING", false),
		OnDemandGeneration:     getEnvBool("ON_DEMAND_GENERATION", true),
		ScanIntervalMinutes:    getEnvInt("SCAN_INTERVAL_MINUTES", 360),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", nil),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvIntList(key string, fallback []int) []int {
	values := getEnvList(key, nil)
	if len(values) == 0 {
		return fallback
	}
	out := make([]int, 0, len(values))
	for _, v := range values {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return fallback
		}
		out = append(out, parsed)
	}
	return out
}
