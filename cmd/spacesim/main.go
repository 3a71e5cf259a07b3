// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spacesim flies a camera through a small PBR-shaded scene of
// planets and stars, rendered with Vulkan. It takes no arguments; see
// the config package for the files it reads.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"cogentcore.org/spacesim/app"
	"cogentcore.org/spacesim/base/logx"
	"cogentcore.org/spacesim/config"
)

func init() {
	// must lock main thread for glfw
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "spacesim:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, file, err := config.Load()
	if err != nil {
		return err
	}
	if l, ok := logx.LevelFromString(cfg.Log.Level); ok {
		logx.UserLevel = l
	}
	logx.SetDefaultLogger()
	if file != "" {
		slog.Info("loaded config", "file", file)
	}

	ap, err := app.New(cfg, file)
	if err != nil {
		return err
	}
	defer ap.Destroy()
	return ap.Run()
}
