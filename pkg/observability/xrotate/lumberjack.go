package xrotate

import (
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultSegmentMaxSizeMB 单个周期文件的默认大小上限（MB）
	//
	// 超过上限时 lumberjack 在同一周期内切分，备份名形如
	// <prefix>.<日期>-<lumberjack 时间戳>.<suffix>；没有后缀时为
	// <prefix>-<lumberjack 时间戳>.<日期>。两种备份同样参与保留数量清理。
	DefaultSegmentMaxSizeMB = 500

	// maxSegmentSizeMB 单个分段大小上限（10 GB）
	maxSegmentSizeMB = 10240
)

// segment 当前周期文件的写入器
//
// 时间轮转决定"何时换文件、换成什么名字"，周期内的写入和按大小切分交给 lumberjack。
//
// 设计决策: 整个 Timed 生命周期只持有一个 lumberjack.Logger，轮转时 Close 后改写
// Filename。lumberjack 每个实例都会启动一个不会退出的 millRun goroutine，
// 每周期新建实例会随轮转次数线性泄漏 goroutine。MaxBackups/MaxAge/Compress 保持为零，
// millRunOnce 直接返回、不读取 Filename，因此在 Timed 的锁内改写 Filename 不存在竞争；
// 过期文件清理由 [Timed] 自己完成。
type segment struct {
	logger *lumberjack.Logger
}

func validateSegmentSize(mb int) error {
	if mb < 0 || mb > maxSegmentSizeMB {
		return fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxSize, mb, maxSegmentSizeMB)
	}
	return nil
}

// newSegment 创建指向 filename 的写入器，文件在首次 Write 时才创建，空周期不留空文件
func newSegment(filename string, maxSizeMB int, localTime bool) *segment {
	return &segment{logger: &lumberjack.Logger{
		Filename:  filename,
		MaxSize:   maxSizeMB,
		LocalTime: localTime,
	}}
}

func (s *segment) Write(p []byte) (int, error) {
	return s.logger.Write(p)
}

// switchTo 关闭当前文件，后续写入落到 filename
func (s *segment) switchTo(filename string) error {
	if err := s.logger.Close(); err != nil {
		return err
	}
	s.logger.Filename = filename
	return nil
}

// rotate 文件名不变时，把当前文件改名为 lumberjack 备份并新建文件
func (s *segment) rotate() error {
	return s.logger.Rotate()
}

func (s *segment) Close() error {
	return s.logger.Close()
}
