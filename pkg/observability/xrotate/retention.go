package xrotate

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/omeyang/xlogpipe/pkg/util/xfile"
)

// periodFile 参与保留数量清理的文件
type periodFile struct {
	name string
	key  string // 排序键，越大越新
}

// prune 删除超出 maxFiles 的旧周期文件，调用方必须持有 r.mu
//
// 只处理 [periodKey] 认得的文件，避免误删同目录下的其他文件。
// 日期布局是定长、高位在前的数字，按排序键倒序即从新到旧。
func (r *Timed) prune() error {
	if r.cfg.maxFiles == 0 {
		return nil
	}

	names, err := xfile.ListWithPrefix(r.dir, r.prefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPruneFailed, err)
	}

	current := filepath.Base(r.filename)
	candidates := make([]periodFile, 0, len(names))
	for _, name := range names {
		if name == current {
			continue
		}
		if key, ok := periodKey(name, r.prefix); ok {
			candidates = append(candidates, periodFile{name: name, key: key})
		}
	}
	slices.SortFunc(candidates, func(a, b periodFile) int {
		return cmp.Compare(b.key, a.key)
	})

	// 当前文件占用一个名额
	keep := r.cfg.maxFiles - 1
	if len(candidates) <= keep {
		return nil
	}

	var errs []error
	for _, f := range candidates[keep:] {
		if err := os.Remove(filepath.Join(r.dir, f.name)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPruneFailed, errors.Join(errs...))
	}
	return nil
}

// periodKey 返回 prefix 对应周期文件的排序键，不是周期文件时 ok 为 false
//
// 认得两种文件名：
//   - <prefix>.<日期>[.<suffix>]，以及带后缀时 lumberjack 的备份 <prefix>.<日期>-<时间戳>.<suffix>
//   - <prefix>-<时间戳>.<日期>：没有后缀时 lumberjack 把日期当作扩展名，备份名把时间戳插在前面
//
// 第一种的键是 "<日期>[.<suffix>]."，第二种改写为 "<日期>-<时间戳>"。'.' 大于 '-'，
// 因此两种命名下同一周期的备份都比该周期的文件旧、比上一周期的文件新。
// lumberjack 的时间戳取自系统时钟，只用于同一周期内备份之间的先后。
func periodKey(name, prefix string) (string, bool) {
	if rest, ok := strings.CutPrefix(name, prefix+"."); ok {
		return rest + ".", startsWithDigit(rest)
	}
	rest, ok := strings.CutPrefix(name, prefix+"-")
	if !ok || !startsWithDigit(rest) {
		return "", false
	}
	// 日期布局不含 '.'，最后一个 '.' 之后就是日期
	i := strings.LastIndexByte(rest, '.')
	if i < 0 || !startsWithDigit(rest[i+1:]) {
		return "", false
	}
	return rest[i+1:] + "-" + rest[:i], true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
