package xconf

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"
)

const (
	// keyDelim 配置路径分隔符，xlog.FromConfig 的 path 参数如 "log" 或 "app.log"
	keyDelim = "."

	// structTag 结构体标签，与 xlog.Config 的 koanf 标签一致
	structTag = "koanf"
)

// Option 配置加载选项
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict 严格模式：Unmarshal 时目标结构体中没有对应字段的键视为错误
//
// 用于发现拼写错误（如把 sample_rate 写成 sample_rat），
// 默认模式下这类键被静默忽略。xlogctl check 使用严格模式。
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// unmarshalConf 返回 koanf 的反序列化配置
//
// 非严格模式交给 koanf 的默认解码器。严格模式需要自行提供 DecoderConfig（Result
// 和 TagName 由 koanf 填写），钩子与 koanf 默认保持一致：时长字符串和
// encoding.TextUnmarshaler（xlog.Level 等）。
func (o options) unmarshalConf() koanf.UnmarshalConf {
	conf := koanf.UnmarshalConf{Tag: structTag}
	if o.strict {
		conf.DecoderConfig = &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		}
	}
	return conf
}
