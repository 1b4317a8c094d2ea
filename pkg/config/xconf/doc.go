// Package xconf 提供配置加载和解析功能，基于 koanf 实现。
//
// # 设计理念
//
// xconf 定位为最小化配置加载器，负责文件/字节数据的加载、叠加和反序列化。
// 配置只在启动时读取一次，不提供热重载；必选字段校验、默认值注入由调用方完成。
//
//   - 工厂函数：[New]、[NewFromFiles]、[NewFromBytes]
//   - Client() 暴露底层 koanf 实例
//   - 增值功能：类型安全的 Unmarshal、多文件叠加
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 多文件叠加
//
// [NewFromFiles] 按顺序加载多个文件，后面的文件覆盖前面文件中的同名键，
// map 类型的值按键合并，列表整体替换：
//
//	cfg, err := xconf.NewFromFiles([]string{"log.yaml", "log.local.yaml"})
//
// # Unmarshal
//
// Unmarshal 使用 mapstructure 进行反序列化，允许弱类型转换
// （例如字符串 "24" 可自动转为 int 24），结构体标签为 koanf，路径分隔符为 "."。
// 默认忽略目标结构体中不存在的键；[WithStrict] 把它们视为错误。
package xconf
