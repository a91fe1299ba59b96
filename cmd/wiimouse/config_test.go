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


package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "handshake_timeout", snakeCase("HandshakeTimeout"))
	assert.Equal(t, "mouse_tilt_divisor_x", snakeCase("MouseTiltDivisorX"))
	assert.Equal(t, "level", snakeCase("Level"))
	assert.Equal(t, "raw_file", snakeCase("RawFile"))
}

func TestRenderTemplate_JSON(t *testing.T) {
	t.Parallel()

	data, err := renderTemplate("json")
	require.NoError(t, err)

	var root map[string]any
	require.NoError(t, json.Unmarshal(data, &root))

	assert.NotContains(t, root, "device", "positional args are not configurable")
	assert.Equal(t, "auto", root["transport"])
	assert.Equal(t, "mouse", root["profile"])
	assert.Equal(t, "5s", root["handshake_timeout"])

	logCfg, ok := root["log"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "info", logCfg["level"])

	mapping, ok := root["mapping"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 120, mapping["wheel_step"], 0)
	assert.InDelta(t, 4, mapping["mouse_tilt_divisor_x"], 0)
	assert.Equal(t, "1s", mapping["rotation_cooldown"])

	reconnect, ok := root["reconnect"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, reconnect["enabled"])

	output, ok := root["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "log", output["sink"])
}

func TestRenderTemplate_YAMLAndTOML(t *testing.T) {
	t.Parallel()

	data, err := renderTemplate("yaml")
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, yaml.Unmarshal(data, &root))
	mapping, ok := root["mapping"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, mapping["stick_dead_zone"])

	data, err = renderTemplate("toml")
	require.NoError(t, err)
	tree, err := toml.LoadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tree.Get("reconnect.attempts"))

	_, err = renderTemplate("ini")
	require.Error(t, err)
}

func TestConfigInit_Run(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "nested", "wiimouse.yaml")
	c := &ConfigInit{Format: "yml", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wheel_step: 120")

	require.Error(t, c.Run(), "existing file is kept without --force")
	c.Force = true
	require.NoError(t, c.Run())

	require.Error(t, (&ConfigInit{Format: "xml", Output: dest}).Run())
}

func TestConfigFile_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wiimouse.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"log": {"level": "debug"},
		"profile": "fps",
		"mapping": {"wheel_step": 60, "rotation_cooldown": "2s"}
	}`), 0o600))

	var cli CLI
	parser, err := kong.New(&cli, kong.Configuration(kong.JSON, path))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"run", "--mapping.stick-scale=9"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cli.Log.Level)
	assert.Equal(t, "fps", cli.Run.Profile)
	assert.Equal(t, 60, cli.Run.Mapping.WheelStep)
	assert.Equal(t, 2*time.Second, cli.Run.Mapping.RotationCooldown)
	assert.InDelta(t, 9, cli.Run.Mapping.StickScale, 0)
}
