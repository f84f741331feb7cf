package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath     = "./config.yaml"
	DefaultListenAddr     = ":8080"
	DefaultPhotosDir      = "./test_photos"
	DefaultChunkSize      = 2048
	DefaultQueueDepth     = 2
	DefaultUptimeInterval = Seconds(time.Second)
	DefaultLogLevel       = "info"
)

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// Config собирается один раз при старте и передаётся в конструкторы по ссылке.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr" json:"listen_addr" validate:"required"`
	PhotosDir      string   `yaml:"photos_dir" json:"photos_dir" validate:"required"`
	ChunkSize      int      `yaml:"chunk_size" json:"chunk_size" validate:"gt=0"`
	ChunkDelay     Seconds  `yaml:"chunk_delay" json:"chunk_delay" validate:"gte=0"`
	QueueDepth     int      `yaml:"queue_depth" json:"queue_depth" validate:"gte=1"`
	Archiver       []string `yaml:"archiver" json:"archiver"`
	Flatten        bool     `yaml:"flatten" json:"flatten"`
	IndexPath      string   `yaml:"index_path" json:"index_path"`
	UptimeInterval Seconds  `yaml:"uptime_interval" json:"uptime_interval" validate:"gt=0"`
	Logging        bool     `yaml:"logging" json:"logging"`
	LogLevel       string   `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		PhotosDir:      DefaultPhotosDir,
		ChunkSize:      DefaultChunkSize,
		QueueDepth:     DefaultQueueDepth,
		UptimeInterval: DefaultUptimeInterval,
		Logging:        true,
		LogLevel:       DefaultLogLevel,
	}
}

// Load читает YAML-конфигурацию поверх значений по умолчанию.
// Отсутствующий файл не ошибка: сервис полностью настраивается флагами и ENV.
func Load(path string) (*Config, error) {
	c := Default()
	if strings.TrimSpace(path) == "" {
		return &c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &c, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &c, nil
}

// Validate проверяет значения; нулевой размер чанка считается ошибкой конфигурации.
func (c *Config) Validate() error {
	if err := defaultValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SplitCommand разбивает строку команды архиватора на argv.
func SplitCommand(s string) []string {
	return strings.Fields(s)
}

// Seconds хранит длительность, которая задаётся числом секунд (допускаются дроби, "0.5")
// либо в формате time.ParseDuration ("500ms").
type Seconds time.Duration

// ParseSeconds разбирает значение задержки или интервала.
func ParseSeconds(s string) (Seconds, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return Seconds(f * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return Seconds(d), nil
}

func (s Seconds) Duration() time.Duration {
	return time.Duration(s)
}

func (s Seconds) String() string {
	return time.Duration(s).String()
}

// UnmarshalYAML принимает как числа, так и строки длительности.
func (s *Seconds) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseSeconds(n.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}
