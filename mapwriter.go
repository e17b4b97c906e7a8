package d3dbsp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// PortalMode selects how cell portals reach the map.
type PortalMode string

const (
	// PortalsRebuild drops the compiled portal brushes and writes one fence
	// per distinct portal instead.
	PortalsRebuild PortalMode = "rebuild"
	// PortalsOriginal keeps the brushes as compiled.
	PortalsOriginal PortalMode = "original"
)

// ExportOptions controls WriteMap. A zero PortalMode means PortalsRebuild
// and a zero Config means DefaultConfig.
type ExportOptions struct {
	ExcludePatches bool
	PortalMode     PortalMode
	Config         Config
}

// DefaultExportOptions returns the options used when nothing is given.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{PortalMode: PortalsRebuild, Config: DefaultConfig()}
}

// DefaultExportPath returns the map path written next to input:
// maps/mp_foo.d3dbsp becomes maps/mp_foo_exported.map.
func DefaultExportPath(input string) string {
	dir, file := filepath.Split(input)
	base := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, base+"_exported.map")
}

// ExportMap writes the map to path. A partially written file is removed.
func (b *BSP) ExportMap(path string, opts ExportOptions) (err error) {
	logger.Info().Str("path", path).Msg("Exporting map")

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: cerr}
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return b.WriteMap(f, opts)
}

// mapWriter carries the output and the first write error.
type mapWriter struct {
	w     *bufio.Writer
	err   error
	scale float32
}

func (mw *mapWriter) printf(format string, args ...any) {
	if mw.err != nil {
		return
	}
	_, mw.err = fmt.Fprintf(mw.w, format, args...)
}

// WriteMap writes the reconstructed map in the "iwmap 4" text format.
func (b *BSP) WriteMap(w io.Writer, opts ExportOptions) error {
	if opts.PortalMode == "" {
		opts.PortalMode = PortalsRebuild
	}
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}
	if opts.PortalMode != PortalsRebuild && opts.PortalMode != PortalsOriginal {
		return errors.Errorf("unknown portal mode %q", opts.PortalMode)
	}
	if err := opts.Config.Validate(); err != nil {
		return err
	}
	if len(b.Entities) == 0 {
		return &FormatError{Lump: LumpEntities.String(), Reason: "no world entity"}
	}
	if len(b.models) == 0 {
		return &FormatError{Lump: LumpModels.String(), Reason: "no world model"}
	}

	brushes, err := b.Brushes()
	if err != nil {
		return err
	}
	var patches []Patch
	if !opts.ExcludePatches {
		if patches, err = b.Patches(opts.Config); err != nil {
			return err
		}
	}

	mw := &mapWriter{w: bufio.NewWriter(w), scale: opts.Config.PlaneBasisScale}
	mw.printf("iwmap 4\n")

	// World
	mw.printf("// entity 0\n{\n")
	for _, kv := range b.Entities[0].KeyValues {
		mw.printf("\"%s\" \"%s\"\n", kv.Key, kv.Value)
	}
	if err := b.writeModel(mw, brushes, 0, mgl32.Vec3{}, opts); err != nil {
		return err
	}
	if opts.PortalMode == PortalsRebuild {
		for _, f := range b.PortalFences(opts.Config) {
			mw.writeFence(&f)
		}
	}
	for i := range patches {
		mw.writePatch(b, &patches[i])
	}
	mw.printf("}\n")

	for i := 1; i < len(b.Entities); i++ {
		e := &b.Entities[i]
		hasBrushes := e.HasBrushModel()
		mw.printf("// entity %d\n{\n", i)
		for _, kv := range e.KeyValues {
			if hasBrushes && (kv.Key == "origin" || kv.Key == "model") {
				continue
			}
			mw.printf("\"%s\" \"%s\"\n", kv.Key, kv.Value)
		}
		if hasBrushes {
			if err := b.writeEntityModel(mw, brushes, i, opts); err != nil {
				return err
			}
		}
		mw.printf("}\n")
	}

	if mw.err != nil {
		return errors.Wrap(mw.err, "writing map")
	}
	return errors.Wrap(mw.w.Flush(), "writing map")
}

// writeEntityModel writes the inline model "*N" of entity i moved to its
// origin.
func (b *BSP) writeEntityModel(mw *mapWriter, brushes []Brush, i int, opts ExportOptions) error {
	e := &b.Entities[i]
	var origin mgl32.Vec3
	if s, ok := e.Property("origin"); ok {
		if _, err := fmt.Sscanf(s, "%f %f %f", &origin[0], &origin[1], &origin[2]); err != nil {
			logger.Warn().Int("entity", i).Str("origin", s).Msg("Unreadable origin")
		}
	}
	s, _ := e.Property("model")
	var model int
	if _, err := fmt.Sscanf(s, "*%d", &model); err != nil {
		logger.Warn().Int("entity", i).Str("model", s).Msg("Entity has no inline model")
		return nil
	}
	if model < 0 || model >= len(b.models) {
		logger.Warn().Int("entity", i).Str("model", s).Msgf("Skipping model outside %d models", len(b.models))
		return nil
	}
	return b.writeModel(mw, brushes, model, origin, opts)
}

// writeModel writes the brushes of model m, translated by origin.
func (b *BSP) writeModel(mw *mapWriter, brushes []Brush, m int, origin mgl32.Vec3, opts ExportOptions) error {
	if m < 0 || m >= len(b.models) {
		return formatErrorf(LumpModels, "model %d of %d", m, len(b.models))
	}
	model := &b.models[m]
	first, count := int(model.FirstBrush), int(model.NumBrushes)
	if first+count > len(brushes) {
		return formatErrorf(LumpModels, "model %d has brushes %d+%d of %d", m, first, count, len(brushes))
	}

	for i := first; i < first+count; i++ {
		polygons := Polygonize(&brushes[i], opts.Config.Tolerances)
		if len(polygons) == 0 {
			logger.Debug().Int("brush", i).Msg("Skipping brush without faces")
			continue
		}
		if opts.PortalMode == PortalsRebuild && onlyPortalFaces(&brushes[i], polygons) {
			continue
		}
		mw.printf("{\n")
		for _, poly := range polygons {
			mw.writePlane(&brushes[i].Planes[poly.Plane], origin)
		}
		mw.printf("}\n")
	}
	return nil
}

func onlyPortalFaces(brush *Brush, polygons []Polygon) bool {
	for _, poly := range polygons {
		if !isPortalMaterial(brush.Planes[poly.Plane].Material) {
			return false
		}
	}
	return true
}

func (mw *mapWriter) writePlane(p *Plane, origin mgl32.Vec3) {
	pts := p.BasisPoints(mw.scale)
	for k := range pts {
		pts[k] = pts[k].Add(origin)
	}
	material := p.Material
	if material == "" {
		material = defaultMaterial
	}
	mw.printf(" ( %f %f %f ) ( %f %f %f ) ( %f %f %f ) %s 128 128 0 0 0 0 lightmap_gray 16384 16384 0 0 0 0\n",
		pts[0][0], pts[0][1], pts[0][2],
		pts[1][0], pts[1][1], pts[1][2],
		pts[2][0], pts[2][1], pts[2][2],
		material)
}

func (mw *mapWriter) writeFence(f *Fence) {
	mw.printf("{\n")
	for k := range f.Planes {
		mw.writePlane(&f.Planes[k], mgl32.Vec3{})
	}
	mw.printf("}\n")
}

// writePatch writes a patch as a mesh of two-vertex rows.
func (mw *mapWriter) writePatch(b *BSP, p *Patch) {
	if len(p.Triangles) == 0 {
		return
	}
	vertex := func(i int) {
		v := b.CollisionVertex(i)
		mw.printf("  v %f %f %f t -1024 1024 -4 4\n", v[0], v[1], v[2])
	}

	mw.printf("  {\n   mesh\n   {\n")
	mw.printf("   %s\n", b.MaterialName(p.Material))
	mw.printf("   lightmap_gray\n")
	mw.printf("   %d 2 16 8\n", len(p.Triangles)*2)
	for _, t := range p.Triangles {
		mw.printf("   (\n")
		vertex(t[0])
		vertex(t[1])
		mw.printf("   )\n   (\n")
		vertex(t[2])
		vertex(t[0])
		mw.printf("   )\n")
	}
	mw.printf("   }\n  }\n")
}
