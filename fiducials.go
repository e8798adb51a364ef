package autofiducial

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"go.viam.com/rdk/logging"

	headscan "github.com/pinhaocheng/AutoFiducialContest/head_scan"
)

// markupsSchema is the Slicer markups JSON schema the output conforms to.
const markupsSchema = "https://raw.githubusercontent.com/slicer/slicer/master/Modules/Loadable/Markups/Resources/Schema/markups-schema-v1.0.3.json#"

// ErrCoordinateSystem is returned for coordinate systems other than LPS/RAS.
var ErrCoordinateSystem = errors.New("coordinate system must be LPS or RAS")

// ControlPoint is one named fiducial position.
type ControlPoint struct {
	Position    r3.Vector
	Label       string
	ID          string
	Description string
}

// FiducialSet is an ordered collection of control points with display state,
// serializable as a Slicer markups .mrk.json file.
type FiducialSet struct {
	ControlPoints    []ControlPoint
	Color            [3]float64
	CoordinateSystem string
}

// NewFiducialSet returns an empty set in LPS with the default display color.
func NewFiducialSet() *FiducialSet {
	return &FiducialSet{
		Color:            [3]float64{0.4, 1.0, 1.0},
		CoordinateSystem: "LPS",
	}
}

// FiducialsFromResult assembles the pipeline output into a FiducialSet in
// canonical label order. Labels absent from the result are absent here too.
func FiducialsFromResult(res *headscan.Result) *FiducialSet {
	set := NewFiducialSet()
	for _, f := range res.Ordered() {
		set.ControlPoints = append(set.ControlPoints, ControlPoint{
			Position:    f.Point,
			Label:       f.Label.String(),
			Description: fmt.Sprintf("aggregated from %d observations", f.Observations),
		})
	}
	return set
}

// SetCoordinateSystem converts the control points between LPS and RAS by
// negating the first two coordinates when the system changes.
func (f *FiducialSet) SetCoordinateSystem(system string) error {
	if system != "LPS" && system != "RAS" {
		return ErrCoordinateSystem
	}
	if f.CoordinateSystem != system {
		for i := range f.ControlPoints {
			p := f.ControlPoints[i].Position
			f.ControlPoints[i].Position = r3.Vector{X: -p.X, Y: -p.Y, Z: p.Z}
		}
		f.CoordinateSystem = system
	}
	return nil
}

// Print logs each control point position.
func (f *FiducialSet) Print(logger logging.Logger) {
	for _, cp := range f.ControlPoints {
		logger.Infof("%-18s [%9.3f, %9.3f, %9.3f]", cp.Label, cp.Position.X, cp.Position.Y, cp.Position.Z)
	}
}

// Serialization structures mirroring the Slicer markups schema.

type markupsFile struct {
	Schema  string   `json:"@schema"`
	Markups []markup `json:"markups"`
}

type markup struct {
	Type                       string             `json:"type"`
	CoordinateSystem           string             `json:"coordinateSystem"`
	CoordinateUnits            string             `json:"coordinateUnits"`
	Locked                     bool               `json:"locked"`
	FixedNumberOfControlPoints bool               `json:"fixedNumberOfControlPoints"`
	LabelFormat                string             `json:"labelFormat"`
	LastUsedControlPointNumber int                `json:"lastUsedControlPointNumber"`
	ControlPoints              []controlPointJSON `json:"controlPoints"`
	Measurements               []json.RawMessage  `json:"measurements"`
	Display                    displayJSON        `json:"display"`
}

type controlPointJSON struct {
	ID               string     `json:"id"`
	Label            string     `json:"label"`
	Description      string     `json:"description"`
	AssociatedNodeID string     `json:"associatedNodeID"`
	Position         [3]float64 `json:"position"`
	Orientation      [9]float64 `json:"orientation"`
	Selected         bool       `json:"selected"`
	Locked           bool       `json:"locked"`
	Visibility       bool       `json:"visibility"`
	PositionStatus   string     `json:"positionStatus"`
}

type displayJSON struct {
	Visibility                              bool       `json:"visibility"`
	Opacity                                 float64    `json:"opacity"`
	Color                                   [3]float64 `json:"color"`
	SelectedColor                           [3]float64 `json:"selectedColor"`
	ActiveColor                             [3]float64 `json:"activeColor"`
	PropertiesLabelVisibility               bool       `json:"propertiesLabelVisibility"`
	PointLabelsVisibility                   bool       `json:"pointLabelsVisibility"`
	TextScale                               float64    `json:"textScale"`
	GlyphType                               string     `json:"glyphType"`
	GlyphScale                              float64    `json:"glyphScale"`
	GlyphSize                               float64    `json:"glyphSize"`
	UseGlyphScale                           bool       `json:"useGlyphScale"`
	SliceProjection                         bool       `json:"sliceProjection"`
	SliceProjectionUseFiducialColor         bool       `json:"sliceProjectionUseFiducialColor"`
	SliceProjectionOutlinedBehindSlicePlane bool       `json:"sliceProjectionOutlinedBehindSlicePlane"`
	SliceProjectionColor                    [3]float64 `json:"sliceProjectionColor"`
	SliceProjectionOpacity                  float64    `json:"sliceProjectionOpacity"`
	LineThickness                           float64    `json:"lineThickness"`
	LineColorFadingStart                    float64    `json:"lineColorFadingStart"`
	LineColorFadingEnd                      float64    `json:"lineColorFadingEnd"`
	LineColorFadingSaturation               float64    `json:"lineColorFadingSaturation"`
	LineColorFadingHueOffset                float64    `json:"lineColorFadingHueOffset"`
	HandlesInteractive                      bool       `json:"handlesInteractive"`
	TranslationHandleVisibility             bool       `json:"translationHandleVisibility"`
	RotationHandleVisibility                bool       `json:"rotationHandleVisibility"`
	ScaleHandleVisibility                   bool       `json:"scaleHandleVisibility"`
	InteractionHandleScale                  float64    `json:"interactionHandleScale"`
	SnapMode                                string     `json:"snapMode"`
}

func defaultDisplay(color [3]float64) displayJSON {
	return displayJSON{
		Visibility:                      true,
		Opacity:                         1.0,
		Color:                           color,
		SelectedColor:                   [3]float64{1.0, 0.5, 0.5},
		ActiveColor:                     [3]float64{0.4, 1.0, 0.0},
		PointLabelsVisibility:           true,
		TextScale:                       3.0,
		GlyphType:                       "Sphere3D",
		GlyphScale:                      3.0,
		GlyphSize:                       5.0,
		UseGlyphScale:                   true,
		SliceProjectionUseFiducialColor: true,
		SliceProjectionColor:            [3]float64{1.0, 1.0, 1.0},
		SliceProjectionOpacity:          0.6,
		LineThickness:                   0.2,
		LineColorFadingStart:            1.0,
		LineColorFadingEnd:              10.0,
		LineColorFadingSaturation:       1.0,
		TranslationHandleVisibility:     true,
		RotationHandleVisibility:        true,
		InteractionHandleScale:          3.0,
		SnapMode:                        "toVisibleSurface",
	}
}

// MarshalJSON encodes the set as a Slicer markups document. Control points
// without an ID are assigned one.
func (f *FiducialSet) MarshalJSON() ([]byte, error) {
	cps := make([]controlPointJSON, len(f.ControlPoints))
	for i, cp := range f.ControlPoints {
		id := cp.ID
		if id == "" {
			id = uuid.NewString()
		}
		cps[i] = controlPointJSON{
			ID:             id,
			Label:          cp.Label,
			Description:    cp.Description,
			Position:       [3]float64{cp.Position.X, cp.Position.Y, cp.Position.Z},
			Orientation:    [9]float64{-1, 0, 0, 0, -1, 0, 0, 0, 1},
			Selected:       true,
			Visibility:     true,
			PositionStatus: "defined",
		}
	}

	system := f.CoordinateSystem
	if system == "" {
		system = "LPS"
	}

	return json.Marshal(markupsFile{
		Schema: markupsSchema,
		Markups: []markup{{
			Type:             "Fiducial",
			CoordinateSystem: system,
			CoordinateUnits:  "mm",
			LabelFormat:      "%N-%d",
			ControlPoints:    cps,
			Measurements:     []json.RawMessage{},
			Display:          defaultDisplay(f.Color),
		}},
	})
}

// UnmarshalJSON decodes a Slicer markups document produced by MarshalJSON or
// by Slicer itself. Only the first markup is read.
func (f *FiducialSet) UnmarshalJSON(data []byte) error {
	var file markupsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	if len(file.Markups) == 0 {
		return errors.New("markups file has no markups")
	}
	m := file.Markups[0]

	f.CoordinateSystem = m.CoordinateSystem
	f.Color = m.Display.Color
	f.ControlPoints = f.ControlPoints[:0]
	for _, cp := range m.ControlPoints {
		f.ControlPoints = append(f.ControlPoints, ControlPoint{
			Position:    r3.Vector{X: cp.Position[0], Y: cp.Position[1], Z: cp.Position[2]},
			Label:       cp.Label,
			ID:          cp.ID,
			Description: cp.Description,
		})
	}
	return nil
}

// SaveFile writes the set as an indented .mrk.json file.
func (f *FiducialSet) SaveFile(path string) error {
	data, err := json.MarshalIndent(f, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding fiducials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadFiducials reads a .mrk.json fiducial file.
func LoadFiducials(path string) (*FiducialSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fiducials file: %w", err)
	}
	set := NewFiducialSet()
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("parsing fiducials file: %w", err)
	}
	return set, nil
}
