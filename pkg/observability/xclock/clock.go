package xclock

import (
	"sync"
	"time"
)

// Clock 时间源接口
type Clock interface {
	// Now 返回当前时间点
	Now() time.Time
}

// 编译时接口检查
var (
	_ Clock = systemClock{}
	_ Clock = (*Fixed)(nil)
	_ Clock = Func(nil)
)

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System 返回读取系统时钟的 Clock。
//
// 返回值不含状态，可在多个 goroutine、多个轮转器之间共享。
func System() Clock {
	return systemClock{}
}

// Fixed 可手动设置的时钟，仅在 Set/Advance 时改变
//
// 零值可用，Now 返回 time.Time{}。
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed 创建固定在 t 的时钟
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now 返回最近一次设置的时间点
func (c *Fixed) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set 替换当前时间点，之后的 Now 返回 t
func (c *Fixed) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance 将时间点向前推进 d 并返回新的时间点
//
// d 为负数时时间倒退，调用方自行保证语义正确。
func (c *Fixed) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Func 将函数适配为 Clock
type Func func() time.Time

// Now 调用底层函数
func (f Func) Now() time.Time {
	return f()
}

// OrSystem 在 c 为 nil 时返回 System()
func OrSystem(c Clock) Clock {
	if c == nil {
		return System()
	}
	return c
}
