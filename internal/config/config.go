package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"image-cropper/internal/storage"
)

type Config struct {
	Port string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	StorageRoot   string
	PublicBaseURL string
	DefaultFolder string

	MaxImageSizeMB int64
	MaxVideoSizeGB int64
	MaxAudioSizeMB int64
	MaxFileSizeMB  int64
	ChunkSizeKB    int

	AllowedTypes   []string
	DefaultFormat  string
	DefaultQuality int
	Ratios         []Ratio
	EnableRatio    bool
	EnableCrop     bool
	OnConflict     string
}

// Ratio is a crop aspect ratio offered by the widget.
type Ratio struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "./media.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "image_cropper"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		StorageRoot:   getEnv("STORAGE_ROOT", "./storage/app/public"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "/storage"),
		DefaultFolder: getEnv("IMAGE_CROPPER_FOLDER", "uploads"),

		MaxImageSizeMB: getEnvInt64("IMAGE_CROPPER_MAX_SIZE_MB", 10),
		MaxVideoSizeGB: getEnvInt64("IMAGE_CROPPER_MAX_VIDEO_GB", 10),
		MaxAudioSizeMB: getEnvInt64("IMAGE_CROPPER_MAX_AUDIO_MB", 500),
		MaxFileSizeMB:  getEnvInt64("IMAGE_CROPPER_MAX_FILE_MB", 2048),
		ChunkSizeKB:    int(getEnvInt64("IMAGE_CROPPER_CHUNK_KB", 2048)),

		AllowedTypes:   getEnvList("IMAGE_CROPPER_ALLOWED_TYPES", "image/jpeg,image/png,image/gif,image/webp"),
		DefaultFormat:  getEnv("IMAGE_CROPPER_FORMAT", "webp"),
		DefaultQuality: int(getEnvInt64("IMAGE_CROPPER_QUALITY", 90)),
		Ratios:         parseRatiosOrDefault(getEnv("IMAGE_CROPPER_RATIOS", "")),
		EnableRatio:    getEnvBool("IMAGE_CROPPER_ENABLE_RATIO", true),
		EnableCrop:     getEnvBool("IMAGE_CROPPER_ENABLE_CROP", true),
		OnConflict:     getEnv("IMAGE_CROPPER_ON_CONFLICT", string(storage.Overwrite)),
	}
}

// Presets returns the storage presets with the configured ceilings.
func (c *Config) Presets() map[storage.Kind]storage.Preset {
	presets := storage.DefaultPresets(c.DefaultFolder)

	limits := map[storage.Kind]int64{
		storage.KindImage: c.MaxImageSizeMB << 20,
		storage.KindVideo: c.MaxVideoSizeGB << 30,
		storage.KindAudio: c.MaxAudioSizeMB << 20,
		storage.KindFile:  c.MaxFileSizeMB << 20,
	}
	for kind, limit := range limits {
		if limit <= 0 {
			continue
		}
		p := presets[kind]
		p.MaxSize = limit
		presets[kind] = p
	}
	return presets
}

// Disk builds the storage disk described by the configuration.
func (c *Config) Disk() *storage.Disk {
	return storage.NewDisk(c.StorageRoot,
		storage.WithPublicBaseURL(c.PublicBaseURL),
		storage.WithChunkSize(c.ChunkSizeKB<<10),
		storage.WithPresets(c.Presets()),
	)
}

// ConflictPolicy parses OnConflict, falling back to overwrite.
func (c *Config) ConflictPolicy() storage.ConflictPolicy {
	p, err := storage.ParseConflictPolicy(c.OnConflict)
	if err != nil {
		log.Printf("Warning: %v, using %s", err, storage.Overwrite)
		return storage.Overwrite
	}
	return p
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %v", key, value, fallback)
		return fallback
	}
	return b
}

func getEnvList(key, fallback string) []string {
	var list []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, strings.ToLower(item))
		}
	}
	return list
}

var defaultRatios = []Ratio{
	{Label: "1:1", Value: 1},
	{Label: "16:9", Value: 16.0 / 9},
	{Label: "4:5", Value: 4.0 / 5},
	{Label: "4:3", Value: 4.0 / 3},
	{Label: "2:3", Value: 2.0 / 3},
}

func parseRatiosOrDefault(s string) []Ratio {
	if strings.TrimSpace(s) == "" {
		return append([]Ratio(nil), defaultRatios...)
	}
	ratios, err := ParseRatios(s)
	if err != nil {
		log.Printf("Warning: %v, using default ratios", err)
		return append([]Ratio(nil), defaultRatios...)
	}
	return ratios
}

// ParseRatios parses "16:9,Square=1:1" style lists. A bare "w:h" item is its
// own label.
func ParseRatios(s string) ([]Ratio, error) {
	var ratios []Ratio
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		label, pair, found := strings.Cut(item, "=")
		if !found {
			pair = item
		}
		label, pair = strings.TrimSpace(label), strings.TrimSpace(pair)

		w, h, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("ratio %q: want w:h", item)
		}
		wf, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("ratio %q: %w", item, err)
		}
		hf, err := strconv.ParseFloat(h, 64)
		if err != nil {
			return nil, fmt.Errorf("ratio %q: %w", item, err)
		}
		if wf <= 0 || hf <= 0 {
			return nil, fmt.Errorf("ratio %q: sides must be positive", item)
		}

		ratios = append(ratios, Ratio{Label: label, Value: wf / hf})
	}
	return ratios, nil
}
