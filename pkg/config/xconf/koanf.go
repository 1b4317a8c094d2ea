package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// koanfConfig 是 Config 接口的 koanf 实现。
//
// 加载完成后只读，koanf 实例自身的读操作是并发安全的。
type koanfConfig struct {
	k     *koanf.Koanf
	paths []string
	opts  options
}

// New 从文件路径创建配置实例。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func New(path string, opts ...Option) (Config, error) {
	return NewFromFiles([]string{path}, opts...)
}

// NewFromFiles 按顺序加载多个配置文件，后加载的覆盖先加载的。
// 每个文件按各自的扩展名检测格式，可以混用 YAML 和 JSON。
func NewFromFiles(paths []string, opts ...Option) (Config, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyPath
	}
	k := koanf.New(keyDelim)
	for _, path := range paths {
		if path == "" {
			return nil, ErrEmptyPath
		}
		format, err := detectFormat(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		if err := loadData(k, data, format); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return &koanfConfig{
		k:     k,
		paths: slices.Clone(paths),
		opts:  applyOptions(opts),
	}, nil
}

// NewFromBytes 从字节数据创建配置实例，需要显式指定格式。
//
// 空数据会创建一个空配置实例，Unmarshal 得到目标结构体的零值。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}

	k := koanf.New(keyDelim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, err
		}
	}

	return &koanfConfig{k: k, opts: applyOptions(opts)}, nil
}

// Client 返回底层的 koanf 实例。
func (c *koanfConfig) Client() *koanf.Koanf {
	return c.k
}

// Unmarshal 将指定路径的配置反序列化到目标结构体。
func (c *koanfConfig) Unmarshal(path string, target any) error {
	if err := c.k.UnmarshalWithConf(path, target, c.opts.unmarshalConf()); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Exists 判断路径是否存在。
func (c *koanfConfig) Exists(path string) bool {
	return c.k.Exists(path)
}

// Paths 返回加载过的配置文件路径。
func (c *koanfConfig) Paths() []string {
	return slices.Clone(c.paths)
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// loadData 加载数据到 koanf 实例，已有的键被覆盖。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
