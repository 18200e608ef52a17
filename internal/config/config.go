/*
 * Copyright 2026 Hewlett Packard Enterprise Development LP
 * Other additional copyright holders may be indicated within.
 *
 * The entirety of this work is licensed under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 *
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/NearNodeFlash/dumpcard/internal/exca"
)

//go:embed config.yaml
var configFile []byte

const (
	// PageSize is the mmap granularity required of both physical bases.
	PageSize = 0x1000

	// MinSettle is the shortest delay after power up before the card may
	// be read.
	MinSettle = time.Millisecond

	windowPageShift = 24
)

type BridgeConfig struct {
	Device       string `yaml:"device"`
	RegisterBase uint64 `yaml:"registerBase"`
	RegisterSize int    `yaml:"registerSize"`
	ExcaOffset   int    `yaml:"excaOffset"`
	ApertureBase uint64 `yaml:"apertureBase"`
	ApertureSize int    `yaml:"apertureSize"`
}

type WindowConfig struct {
	Settle time.Duration `yaml:"settle"`
}

type ConfigFile struct {
	Version  string
	Metadata struct {
		Name string
	}
	Bridge BridgeConfig `yaml:"bridge"`
	Window WindowConfig `yaml:"window"`
}

// Load returns the built-in configuration overlaid with the YAML file at
// path. An empty path returns the built-in configuration.
func Load(path string) (*ConfigFile, error) {
	var config = new(ConfigFile)
	if err := yaml.Unmarshal(configFile, config); err != nil {
		return nil, fmt.Errorf("built-in configuration: %w", err)
	}

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Validate checks that the configuration describes mappings the bridge can
// actually route.
func (c *ConfigFile) Validate() error {
	b := &c.Bridge

	if b.Device == "" {
		return fmt.Errorf("bridge device not configured")
	}

	if b.RegisterBase%PageSize != 0 {
		return fmt.Errorf("register base %#x is not page aligned", b.RegisterBase)
	}
	if b.RegisterSize <= 0 || b.RegisterSize%PageSize != 0 {
		return fmt.Errorf("register size %#x is not a multiple of the page size", b.RegisterSize)
	}
	if b.ExcaOffset < exca.SocketSize {
		return fmt.Errorf("exca offset %#x overlaps the socket controller block", b.ExcaOffset)
	}
	if b.ExcaOffset+exca.Size > b.RegisterSize {
		return fmt.Errorf("exca block at %#x does not fit in the %#x byte register page", b.ExcaOffset, b.RegisterSize)
	}

	if b.ApertureBase%PageSize != 0 {
		return fmt.Errorf("aperture base %#x is not page aligned", b.ApertureBase)
	}
	if b.ApertureSize <= 0 || b.ApertureSize%PageSize != 0 {
		return fmt.Errorf("aperture size %#x is not a multiple of the window granularity", b.ApertureSize)
	}

	// The window page register supplies address bits 31..24 for both the
	// start and the (exclusive) end of the window.
	end := b.ApertureBase + uint64(b.ApertureSize)
	if b.ApertureBase>>windowPageShift != end>>windowPageShift {
		return fmt.Errorf("aperture [%#x, %#x) crosses a 16 MiB boundary", b.ApertureBase, end)
	}
	if end>>32 != 0 {
		return fmt.Errorf("aperture [%#x, %#x) is above 4 GiB", b.ApertureBase, end)
	}

	if c.Window.Settle < MinSettle {
		return fmt.Errorf("settle delay %v is shorter than %v", c.Window.Settle, MinSettle)
	}

	return nil
}
