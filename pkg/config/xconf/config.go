package xconf

import (
	"errors"

	"github.com/knadh/koanf/v2"
)

var (
	// ErrEmptyPath 没有给出配置文件，或路径为空串
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 扩展名或 Format 不是 YAML/JSON
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 读取配置文件失败
	ErrLoadFailed = errors.New("xconf: load config")

	// ErrParseFailed 文件内容不是合法的 YAML/JSON
	ErrParseFailed = errors.New("xconf: parse config")

	// ErrUnmarshalFailed 反序列化到目标结构体失败，严格模式下包括未知的键
	ErrUnmarshalFailed = errors.New("xconf: unmarshal config")
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Config 定义配置接口。
// 只提供增值功能，基础操作请直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回底层的 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将指定路径的配置反序列化到目标结构体。
	// path 为空字符串时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Exists 判断路径是否存在。
	Exists(path string) bool

	// Paths 返回加载过的配置文件路径，从字节数据创建的 Config 返回空。
	Paths() []string
}
