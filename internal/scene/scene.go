// Package scene loads portal scenes from YAML.
package scene

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/portalcam/internal/portal"
	"github.com/Faultbox/portalcam/internal/traversal"
)

var (
	ErrUnknownLink   = errors.New("scene: link to unknown portal")
	ErrSelfLink      = errors.New("scene: portal linked to itself")
	ErrLinkConflict  = errors.New("scene: conflicting links")
	ErrDuplicateName = errors.New("scene: duplicate portal name")
	ErrInvalid       = errors.New("scene: invalid value")
)

// SceneDef is the file form of a scene.
type SceneDef struct {
	Camera      CameraDef   `yaml:"camera"`
	Portals     []PortalDef `yaml:"portals"`
	Penetrating string      `yaml:"penetrating"`
}

// CameraDef describes the real camera.
type CameraDef struct {
	Position    []float32 `yaml:"position"`
	Rotation    []float32 `yaml:"rotation"` // Euler degrees: pitch, yaw, roll
	Mode        string    `yaml:"mode"`
	FOV         float32   `yaml:"fov"`
	Aspect      float32   `yaml:"aspect"`
	OrthoSize   float32   `yaml:"ortho_size"`
	FocalLength float32   `yaml:"focal_length"`
	SensorSize  []float32 `yaml:"sensor_size"`
	LensShift   []float32 `yaml:"lens_shift"`
	Near        float32   `yaml:"near"`
	Far         float32   `yaml:"far"`
	CullingMask *uint32   `yaml:"culling_mask"`
	Width       int       `yaml:"width"`
	Height      int       `yaml:"height"`
}

// PortalDef describes one portal.
type PortalDef struct {
	Name     string    `yaml:"name"`
	Position []float32 `yaml:"position"`
	Rotation []float32 `yaml:"rotation"` // Euler degrees: pitch, yaw, roll
	Scale    []float32 `yaml:"scale"`    // one value or three
	Size     []float32 `yaml:"size"`     // half width, half height
	Layer    uint      `yaml:"layer"`
	Link     string    `yaml:"link"`
	Active   *bool     `yaml:"active"`
	Convex   bool      `yaml:"convex"`
}

// Scene is a loaded scene ready for traversal.
type Scene struct {
	Camera      *traversal.Camera
	Registry    *portal.Registry
	Penetrating *portal.Portal
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML.
func Parse(data []byte) (*Scene, error) {
	var def SceneDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	return Build(&def)
}

// Build turns a definition into live portals and a camera.
func Build(def *SceneDef) (*Scene, error) {
	cam, err := buildCamera(&def.Camera)
	if err != nil {
		return nil, err
	}

	reg := portal.NewRegistry()
	byName := make(map[string]*portal.Portal, len(def.Portals))
	for i := range def.Portals {
		pd := &def.Portals[i]
		if pd.Name == "" {
			pd.Name = fmt.Sprintf("portal%d", i)
		}
		if _, dup := byName[pd.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, pd.Name)
		}
		p, err := buildPortal(pd)
		if err != nil {
			return nil, fmt.Errorf("portal %q: %w", pd.Name, err)
		}
		byName[pd.Name] = p
		reg.Add(p)
	}

	if err := linkPortals(def.Portals, byName); err != nil {
		return nil, err
	}

	s := &Scene{Camera: cam, Registry: reg}
	if def.Penetrating != "" {
		p, ok := byName[def.Penetrating]
		if !ok {
			return nil, fmt.Errorf("%w: penetrating portal %q", ErrUnknownLink, def.Penetrating)
		}
		s.Penetrating = p
	}
	return s, nil
}

func linkPortals(defs []PortalDef, byName map[string]*portal.Portal) error {
	for _, pd := range defs {
		if pd.Link == "" {
			continue
		}
		if pd.Link == pd.Name {
			return fmt.Errorf("%w: %q", ErrSelfLink, pd.Name)
		}
		p, other := byName[pd.Name], byName[pd.Link]
		if other == nil {
			return fmt.Errorf("%w: %q links to %q", ErrUnknownLink, pd.Name, pd.Link)
		}
		if cur := other.Linked(); cur != nil && cur != p {
			return fmt.Errorf("%w: %q is already linked to %q", ErrLinkConflict, pd.Link, cur.Name)
		}
		if cur := p.Linked(); cur != nil && cur != other {
			return fmt.Errorf("%w: %q is already linked to %q", ErrLinkConflict, pd.Name, cur.Name)
		}
		portal.Link(p, other)
	}
	return nil
}

func buildPortal(pd *PortalDef) (*portal.Portal, error) {
	p := portal.New(pd.Name)
	var err error
	if p.Position, err = vec3("position", pd.Position, mgl32.Vec3{}); err != nil {
		return nil, err
	}
	if p.Rotation, err = euler(pd.Rotation); err != nil {
		return nil, err
	}
	if p.Scale, err = scale(pd.Scale); err != nil {
		return nil, err
	}
	if len(pd.Size) > 0 {
		if len(pd.Size) != 2 || pd.Size[0] <= 0 || pd.Size[1] <= 0 {
			return nil, fmt.Errorf("%w: size must be two positive half extents", ErrInvalid)
		}
		p.Size = mgl32.Vec2{pd.Size[0], pd.Size[1]}
	}
	p.Layer = pd.Layer
	p.Collider.Convex = pd.Convex
	if pd.Active != nil {
		p.Active = *pd.Active
	}
	return p, nil
}

func buildCamera(cd *CameraDef) (*traversal.Camera, error) {
	cam := traversal.NewCamera()
	var err error
	if cam.Position, err = vec3("camera position", cd.Position, mgl32.Vec3{}); err != nil {
		return nil, err
	}
	if cam.Rotation, err = euler(cd.Rotation); err != nil {
		return nil, err
	}
	cam.Mode = traversal.ParseProjectionMode(cd.Mode)
	if cd.FOV > 0 {
		cam.FieldOfView = cd.FOV
	}
	cam.Aspect = max(cd.Aspect, 0)
	if cd.OrthoSize > 0 {
		cam.OrthographicSize = cd.OrthoSize
	}
	if cd.FocalLength > 0 {
		cam.FocalLength = cd.FocalLength
	}
	if cam.SensorSize, err = vec2("sensor_size", cd.SensorSize, cam.SensorSize); err != nil {
		return nil, err
	}
	if cam.LensShift, err = vec2("lens_shift", cd.LensShift, mgl32.Vec2{}); err != nil {
		return nil, err
	}
	if cd.Near > 0 {
		cam.Near = cd.Near
	}
	if cd.Far > 0 {
		cam.Far = cd.Far
	}
	if cam.Far <= cam.Near {
		return nil, fmt.Errorf("%w: camera far %g must exceed near %g", ErrInvalid, cam.Far, cam.Near)
	}
	if cd.CullingMask != nil {
		cam.CullingMask = *cd.CullingMask
	}
	if cd.Width > 0 {
		cam.PixelWidth = cd.Width
	}
	if cd.Height > 0 {
		cam.PixelHeight = cd.Height
	}
	return cam, nil
}

func vec3(field string, v []float32, def mgl32.Vec3) (mgl32.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return mgl32.Vec3{v[0], v[1], v[2]}, nil
	default:
		return def, fmt.Errorf("%w: %s needs 3 values, got %d", ErrInvalid, field, len(v))
	}
}

func vec2(field string, v []float32, def mgl32.Vec2) (mgl32.Vec2, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 2:
		return mgl32.Vec2{v[0], v[1]}, nil
	default:
		return def, fmt.Errorf("%w: %s needs 2 values, got %d", ErrInvalid, field, len(v))
	}
}

func scale(v []float32) (mgl32.Vec3, error) {
	if len(v) == 1 {
		v = []float32{v[0], v[0], v[0]}
	}
	s, err := vec3("scale", v, mgl32.Vec3{1, 1, 1})
	if err != nil {
		return s, err
	}
	if s[0] <= 0 || s[1] <= 0 || s[2] <= 0 {
		return s, fmt.Errorf("%w: scale must be positive", ErrInvalid)
	}
	return s, nil
}

// euler converts pitch, yaw, roll degrees to a rotation applied roll first,
// then pitch, then yaw.
func euler(v []float32) (mgl32.Quat, error) {
	d, err := vec3("rotation", v, mgl32.Vec3{})
	if err != nil {
		return mgl32.QuatIdent(), err
	}
	yaw := mgl32.QuatRotate(mgl32.DegToRad(d[1]), mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(mgl32.DegToRad(d[0]), mgl32.Vec3{1, 0, 0})
	roll := mgl32.QuatRotate(mgl32.DegToRad(d[2]), mgl32.Vec3{0, 0, 1})
	return yaw.Mul(pitch).Mul(roll).Normalize(), nil
}
