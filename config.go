package d3dbsp

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// Tolerances are the epsilons used by the geometric stages.
type Tolerances struct {
	Determinant   float32 `yaml:"determinant"`   // Plane triples with |det| at or below this have no unique point
	HalfSpace     float32 `yaml:"halfSpace"`     // How far outside a plane a brush vertex may lie
	VertexMerge   float32 `yaml:"vertexMerge"`   // Distance under which two face vertices are one
	Fuzzy         float32 `yaml:"fuzzy"`         // Per-axis vertex match for portals and sentinel vertices
	PlaneDistance float32 `yaml:"planeDistance"` // Distance match for duplicate brush planes
}

// Config holds the tunable constants of the reconstruction.
type Config struct {
	Tolerances      Tolerances `yaml:"tolerances"`
	PatchTriangles  int        `yaml:"patchTriangles"`  // Triangles per patch mesh
	PortalDepth     float32    `yaml:"portalDepth"`     // Thickness of a portal fence
	PlaneBasisScale float32    `yaml:"planeBasisScale"` // Spacing of the three points written per plane
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	var c Config
	if err := yaml.Unmarshal(defaultConfig, &c); err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return c
}

// LoadConfig starts from the defaults and applies each YAML file in order.
// Keys missing from a file keep their previous value.
func LoadConfig(paths ...string) (Config, error) {
	c := DefaultConfig()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, &IOError{Op: "read", Path: path, Err: err}
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, errors.Wrapf(err, "could not process config file %s", path)
		}
		logger.Debug().Str("path", path).Msg("Applied config file")
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects values the stages cannot work with.
func (c Config) Validate() error {
	t := c.Tolerances
	switch {
	case t.Determinant < 0, t.HalfSpace < 0, t.VertexMerge < 0, t.Fuzzy < 0, t.PlaneDistance < 0:
		return errors.New("tolerances must not be negative")
	case c.PatchTriangles < 1:
		return errors.New("patchTriangles must be at least 1")
	case c.PortalDepth <= 0:
		return errors.New("portalDepth must be positive")
	case c.PlaneBasisScale <= 0:
		return errors.New("planeBasisScale must be positive")
	}
	return nil
}
