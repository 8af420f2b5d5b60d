// This file originates from Docker/Moby,
// https://github.com/moby/moby/blob/master/pkg/reexec/reexec.go
// Licensed under Apache License 2.0: https://github.com/moby/moby/blob/master/LICENSE
// Copyright 2013-2018 Docker, Inc.
//
// Package reexec facilitates the busybox style reexec of a binary under a
// different name. Handlers are registered with a name and the base name of
// argv 0 selects the one to run. Tests use it to let the test binary stand in
// for the external programs the verifier drives.
// reexec 包允许同一个二进制文件以不同名称重新执行，测试中用它模拟外部程序。

package reexec

import (
	"fmt"
	"os"
	"path/filepath"
)

var registeredInitializers = make(map[string]func())

// Register adds an initialization func under the specified name.
func Register(name string, initializer func()) {
	if _, exists := registeredInitializers[name]; exists {
		panic(fmt.Sprintf("reexec func already registered under name %q", name))
	}
	registeredInitializers[name] = initializer
}

// Init is called as the first part of the exec process and returns true if an
// initialization function was called.
// Init 在进程启动时调用，如果 argv 0 匹配到已注册的函数则执行它并返回 true。
func Init() bool {
	if initializer, ok := registeredInitializers[filepath.Base(os.Args[0])]; ok {
		initializer()
		return true
	}
	return false
}

// Link creates a symlink named name in dir pointing at the running binary and
// returns its path. Executing the link runs the initializer registered under
// name.
func Link(dir, name string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", err
	}
	link := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.Symlink(self, link); err != nil {
		return "", err
	}
	return link, nil
}
