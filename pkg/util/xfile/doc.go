// Package xfile 提供日志文件落盘所需的路径工具。
//
//   - [SanitizePath]: 路径格式净化（空路径、空字节、相对路径穿越、目录路径）
//   - [EnsureDir]: 确保文件的父目录存在
//   - [ListWithPrefix]: 列出目录中以指定前缀开头的普通文件
//
// 路径穿越检测按路径段精确匹配，只有 ".." 作为独立路径段时才会被拒绝，
// "app..2024.log" 之类的合法文件名不受影响。
package xfile
