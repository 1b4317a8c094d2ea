package xlog

import (
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
)

// JSONLayout 每条记录一个 JSON 对象，以换行结尾
//
// 字段：timestamp（RFC3339Nano）、level、module_path、file、line、message、kvs。
// 缺失的源码信息省略对应字段。属性值无法编码（如 NaN、chan）时返回 [ErrFormat]。
type JSONLayout struct {
	// Location 时间戳时区，nil 表示 time.Local
	Location *time.Location
}

var _ Layout = (*JSONLayout)(nil)

type jsonRecord struct {
	Timestamp  string         `json:"timestamp"`
	Level      string         `json:"level"`
	ModulePath string         `json:"module_path,omitempty"`
	File       string         `json:"file,omitempty"`
	Line       int            `json:"line,omitempty"`
	Message    string         `json:"message"`
	KVs        map[string]any `json:"kvs,omitempty"`
}

// Format 实现 Layout 接口
func (l *JSONLayout) Format(r Record, now time.Time) ([]byte, error) {
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}

	out := jsonRecord{
		Timestamp:  now.In(loc).Format(time.RFC3339Nano),
		Level:      r.Level.String(),
		ModulePath: r.Module,
		File:       r.File,
		Line:       r.Line,
		Message:    r.Message,
	}
	if len(r.Attrs) > 0 {
		out.KVs = make(map[string]any, len(r.Attrs))
		for _, a := range r.Attrs {
			putJSONAttr(out.KVs, a)
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return append(data, '\n'), nil
}

// putJSONAttr 把属性写入 m，key 为空的分组内联到 m
//
// 同名分组合并到同一个对象：slog Handler 的预置属性和记录属性以两个同名分组传入。
func putJSONAttr(m map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}
		target := m
		if a.Key != "" {
			existing, ok := m[a.Key].(map[string]any)
			if !ok {
				existing = make(map[string]any, len(group))
				m[a.Key] = existing
			}
			target = existing
		}
		for _, ga := range group {
			putJSONAttr(target, ga)
		}
		return
	}
	m[a.Key] = jsonValue(a.Value)
}

func jsonValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	}
}
