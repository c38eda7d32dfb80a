// Package fsx 提供导出文件的原子写入：同目录临时文件 + rename。
package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 测试可替换，用于模拟 EXDEV 等 rename 错误。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径已存在但不是普通文件。
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("导出路径类型冲突：%q（期望普通文件，实际 %s）", e.Path, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示 rename 跨文件系统失败。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨盘 rename 失败（EXDEV）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename 封装 os.Rename，并把 EXDEV 标记为 CrossDeviceError。
func Rename(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// WriteOptions 控制 WriteFile 的覆盖行为。
type WriteOptions struct {
	// Overwrite=false 时目标已存在返回 os.ErrExist。
	Overwrite bool
	Perm      os.FileMode
}

// WriteFile 原子写入 path；父目录不存在时自动创建。
// 目标若存在且是目录或特殊文件，无论 Overwrite 如何都返回 PathTypeConflictError。
func WriteFile(path string, data []byte, o WriteOptions) error {
	if path == "" {
		return errors.New("导出路径为空")
	}
	path = filepath.Clean(path)
	if fi, err := os.Lstat(path); err == nil {
		switch {
		case fi.IsDir():
			return &PathTypeConflictError{Path: path, Got: "dir"}
		case !fi.Mode().IsRegular():
			return &PathTypeConflictError{Path: path, Got: fi.Mode().Type().String()}
		case !o.Overwrite:
			return fmt.Errorf("%q: %w", path, os.ErrExist)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	perm := o.Perm
	if perm == 0 {
		perm = 0o644
	}
	return writeAtomic(filepath.Dir(path), filepath.Base(path), data, perm)
}

func writeAtomic(dir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return err
	}

	// 目录 fsync 尽力而为。
	_ = syncDir(dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
