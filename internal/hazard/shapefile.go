package hazard

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Attribute names searched for a per-record weight. Records without one get
// defaultImportWeight.
var weightAttributes = []string{"weight", "severity", "score"}

const defaultImportWeight = 0.5

// ParseShapefile reads point records from a crime-observation shapefile and
// returns them as hazard points. Non-point shapes and unparseable weights are
// skipped, not fatal.
func ParseShapefile(path string) ([]Point, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "hazard: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	weightIdx := weightFieldIndex(reader.Fields())

	var points []Point
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			skipped++
			continue
		}

		weight := defaultImportWeight
		if weightIdx >= 0 {
			weight = parseWeight(reader.Attribute(weightIdx))
		}

		points = append(points, Point{Lat: point.Y, Lon: point.X, Weight: weight})
	}

	if skipped > 0 {
		zap.L().Debug("skipped non-point shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return points, nil
}

// weightFieldIndex returns the index of the first field matching one of
// weightAttributes, or -1 if none is present.
func weightFieldIndex(fields []shp.Field) int {
	for i, f := range fields {
		name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
		for _, candidate := range weightAttributes {
			if name == candidate {
				return i
			}
		}
	}
	return -1
}

// parseWeight converts a raw DBF attribute value into a hazard weight.
// Values outside (0, 1] fall back to defaultImportWeight.
func parseWeight(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 && parsed <= 1 {
		return parsed
	}
	return defaultImportWeight
}
