// go-wiimote
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-wiimote.
//
// go-wiimote is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-wiimote is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-wiimote; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.


// Command wiimouse turns a Wiimote into a mouse and keyboard.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	wiimote "github.com/ZaparooProject/go-wiimote"
	_ "github.com/ZaparooProject/go-wiimote/detection/hidraw" // Register the hidraw detector
)

// LogConfig holds the global logging flags.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"WIIMOUSE_LOG_LEVEL"`
	File    string `help:"Log file path (default: console only)" env:"WIIMOUSE_LOG_FILE"`
	RawFile string `help:"Raw frame trace file (default: stdout at trace level)" env:"WIIMOUSE_LOG_RAW_FILE"`
}

// RawLog receives one hex-dump line per frame. A nil Writer disables
// tracing.
type RawLog struct {
	io.Writer
}

// CLI is the root command.
type CLI struct {
	Config string    `help:"Configuration file (json, yaml or toml)" type:"path"`
	Log    LogConfig `embed:"" prefix:"log."`

	Run       RunCmd        `cmd:"" default:"withargs" help:"Map a Wiimote to mouse and keyboard input"`
	Detect    DetectCmd     `cmd:"" help:"List attached controllers"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := ConfigCandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("Use a Wii Remote as a mouse and keyboard"),
		kong.UsageOnError(),
		// Configuration files in priority order; flags and env override them.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closers, err := SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	level := ParseLevel(cli.Log.Level)
	if level <= slog.LevelDebug {
		wiimote.SetDebugEnabled(true)
		wiimote.SetDebugOutput(debugWriter{logger: logger})
	}

	raw := RawLog{}
	switch {
	case cli.Log.RawFile != "":
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
		} else {
			raw.Writer = f
			closers = append(closers, f)
		}
	case level <= LevelTrace:
		raw.Writer = os.Stdout
	}

	ctx.Bind(logger)
	ctx.Bind(raw)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
