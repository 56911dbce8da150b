// Package embedded 提供嵌入数据文件的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包保存该文件系统，让其他包可以在磁盘文件缺失时回退到内置副本。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrNotInitialized 未调用 Init()
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var dataFS fs.FS

// Init 设置嵌入的数据文件系统
// 必须在 main() 开始时、任何配置加载之前调用
func Init(data fs.FS) {
	dataFS = data
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return dataFS != nil
}

// FS 返回嵌入的文件系统，未初始化时为 nil
func FS() fs.FS {
	return dataFS
}

// clean 标准化路径并检查前缀
// 路径必须以 "data/" 开头
func clean(path string) (string, error) {
	if dataFS == nil {
		return "", ErrNotInitialized
	}
	// embed.FS 使用正斜杠
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

// Open 打开嵌入文件
func Open(path string) (fs.File, error) {
	path, err := clean(path)
	if err != nil {
		return nil, err
	}
	return dataFS.Open(path)
}

// ReadFile 读取嵌入文件内容
func ReadFile(path string) ([]byte, error) {
	path, err := clean(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, path)
}

// Exists 检查文件是否存在于嵌入文件系统中
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 在嵌入文件系统中匹配文件
func Glob(pattern string) ([]string, error) {
	pattern, err := clean(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(dataFS, pattern)
}
