// Package craft implements the player saucer: flight controls, the chase
// camera and the landing state machine.
package craft

import (
	"fmt"
	"math"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
)

// Flight tuning, in world units and degrees per tick.
const (
	DefaultMaxSpeed = 42.0
	MinSpeed        = -15.0

	Acceleration = 0.85
	Deceleration = 0.95
	Drag         = 0.96

	YawRate      = 3.2
	VerticalRate = 2.5
	WheelPitch   = 4.5
	MaxPitch     = 78.0

	TakeoffSpeed = 10.0
)

// Landing tuning.
const (
	ApproachMargin = 23.0  // proximity trigger above the surface
	LandingSpeed   = 11.0  // |speed| below this lands, at or above bounces
	SurfaceOffset  = 7.0   // resting height above the surface
	LandedPitch    = -82.0 // steep nose-up, so takeoff climbs away
	BounceFactor   = 2.0
	BounceDamping  = 0.3
)

// Chase camera tuning.
const (
	CameraYawOffset    = 180.0
	CameraRestPitch    = 18.0
	CameraDistance     = 52.0
	CameraMaxPitch     = 68.0
	CameraYawPerUnit   = 0.28
	CameraPitchPerUnit = 0.26
	CameraYawSmoothing = 0.12
	CameraPitchSmooth  = 0.09
	CameraLift         = 16.0
	CameraTargetLift   = 6.0
)

// StartPosition is where every session begins.
var StartPosition = astro.Vec3{X: 0, Y: 150, Z: 0}

// Status messages shown on the HUD.
const (
	HelpMessage   = "W/S Thrust • A/D Yaw • RMB+Mouse = Camera • I = Load Editor ZIP"
	BounceMessage = "WARNING: Too fast! Bouncing off atmosphere!"
)

// State is the craft's flight state.
type State int

const (
	Flying State = iota
	Landed
)

func (s State) String() string {
	switch s {
	case Flying:
		return "flying"
	case Landed:
		return "landed"
	default:
		return "unknown"
	}
}

// Outcome reports what a single Update did, so callers can raise events.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeLanded
	OutcomeTookOff
	OutcomeBounced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLanded:
		return "landed"
	case OutcomeTookOff:
		return "took off"
	case OutcomeBounced:
		return "bounced"
	default:
		return "none"
	}
}

// Controls is one tick of sampled input. Booleans are held keys; the
// float fields are deltas accumulated since the previous tick.
type Controls struct {
	Thrust   bool
	Reverse  bool
	YawLeft  bool
	YawRight bool
	Ascend   bool
	Descend  bool
	Takeoff  bool

	Wheel float64 // scroll units, positive pitches the nose up

	CameraOverride bool
	CameraDX       float64
	CameraDY       float64
}

// CameraPose is the chase camera's eye and look-at point.
type CameraPose struct {
	Eye    astro.Vec3
	Target astro.Vec3
}

// Craft is the player saucer.
type Craft struct {
	Position astro.Vec3
	Velocity astro.Vec3
	Yaw      float64 // degrees
	Pitch    float64 // degrees, positive is nose down
	Speed    float64
	MaxSpeed float64

	CamYaw   float64
	CamPitch float64
	CamDist  float64

	// LandedOn is the body the craft rests on, nil while flying.
	LandedOn *body.Body
	Message  string

	// leaving is the body just taken off from. It is ignored by the
	// proximity check until the craft clears its trigger radius.
	leaving *body.Body
}

// New creates a craft at the start position. A non-positive maxSpeed uses
// DefaultMaxSpeed.
func New(maxSpeed float64) *Craft {
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeed
	}
	return &Craft{
		Position: StartPosition,
		MaxSpeed: maxSpeed,
		CamYaw:   CameraYawOffset,
		CamPitch: CameraRestPitch,
		CamDist:  CameraDistance,
		Message:  HelpMessage,
	}
}

// State returns Landed while resting on a body.
func (c *Craft) State() State {
	if c.LandedOn != nil {
		return Landed
	}
	return Flying
}

// Forward returns the unit heading from yaw and pitch. Yaw 0 faces -Z and
// positive yaw turns left (counterclockwise seen from above).
func (c *Craft) Forward() astro.Vec3 {
	yaw := astro.DegToRad(c.Yaw)
	pitch := astro.DegToRad(c.Pitch)
	return astro.Vec3{
		X: -math.Sin(yaw) * math.Cos(pitch),
		Y: -math.Sin(pitch),
		Z: -math.Cos(yaw) * math.Cos(pitch),
	}
}

// SpeedPercent returns forward speed as a whole percentage of MaxSpeed.
func (c *Craft) SpeedPercent() int {
	if c.MaxSpeed <= 0 {
		return 0
	}
	return int(math.Max(0, c.Speed) / c.MaxSpeed * 100)
}

// Camera returns the chase camera pose trailing the craft.
func (c *Craft) Camera() CameraPose {
	cy := astro.DegToRad(c.CamYaw)
	cp := astro.DegToRad(c.CamPitch)
	eye := astro.Vec3{
		X: c.Position.X - math.Sin(cy)*math.Cos(cp)*c.CamDist,
		Y: c.Position.Y + math.Sin(cp)*c.CamDist + CameraLift,
		Z: c.Position.Z - math.Cos(cy)*math.Cos(cp)*c.CamDist,
	}
	return CameraPose{
		Eye:    eye,
		Target: c.Position.Add(astro.Vec3{Y: CameraTargetLift}),
	}
}

// Update advances the craft one tick against the bodies in range.
func (c *Craft) Update(ctrl Controls, bodies []*body.Body) Outcome {
	defer c.updateCamera(ctrl)

	if c.LandedOn != nil {
		c.Message = fmt.Sprintf("Landed on %s - SPACE to takeoff", c.LandedOn.Name)
		if !ctrl.Takeoff {
			return OutcomeNone
		}
		c.leaving = c.LandedOn
		c.LandedOn = nil
		c.Speed = TakeoffSpeed
		c.Velocity = c.Forward().Scale(c.Speed)
		return OutcomeTookOff
	}

	switch {
	case ctrl.Thrust:
		c.Speed += Acceleration
	case ctrl.Reverse:
		c.Speed -= Deceleration
	default:
		c.Speed *= Drag
	}
	c.Speed = astro.Clamp(c.Speed, MinSpeed, c.MaxSpeed)

	if ctrl.YawLeft {
		c.Yaw += YawRate
	}
	if ctrl.YawRight {
		c.Yaw -= YawRate
	}
	if ctrl.Ascend {
		c.Position.Y += VerticalRate
	}
	if ctrl.Descend {
		c.Position.Y -= VerticalRate
	}

	c.Pitch = astro.Clamp(c.Pitch-ctrl.Wheel*WheelPitch, -MaxPitch, MaxPitch)

	c.Velocity = c.Forward().Scale(c.Speed)
	c.Position = c.Position.Add(c.Velocity)

	return c.checkProximity(bodies)
}

// checkProximity lands on or bounces off the first body within reach.
func (c *Craft) checkProximity(bodies []*body.Body) Outcome {
	if c.leaving != nil && !c.within(c.leaving) {
		c.leaving = nil
	}
	for _, b := range bodies {
		if b == nil || b == c.leaving || !c.within(b) {
			continue
		}
		if math.Abs(c.Speed) < LandingSpeed {
			c.land(b)
			return OutcomeLanded
		}
		c.Message = BounceMessage
		c.Position = c.Position.Sub(c.Velocity.Scale(BounceFactor))
		c.Speed *= BounceDamping
		return OutcomeBounced
	}
	return OutcomeNone
}

func (c *Craft) within(b *body.Body) bool {
	return c.Position.Dist(b.Position) < b.Radius+ApproachMargin
}

func (c *Craft) land(b *body.Body) {
	c.LandedOn = b
	c.leaving = nil
	c.Speed = 0
	c.Velocity = astro.Vec3{}

	dir := c.Position.Sub(b.Position).Normalized()
	if dir == (astro.Vec3{}) {
		dir = astro.Vec3{Y: 1}
	}
	c.Position = b.Position.Add(dir.Scale(b.Radius + SurfaceOffset))
	c.Pitch = LandedPitch
	c.Message = fmt.Sprintf("Landed on %s - SPACE to takeoff", b.Name)
}

func (c *Craft) updateCamera(ctrl Controls) {
	if ctrl.CameraOverride {
		c.CamYaw += ctrl.CameraDX * CameraYawPerUnit
		c.CamPitch = astro.Clamp(c.CamPitch-ctrl.CameraDY*CameraPitchPerUnit, -CameraMaxPitch, CameraMaxPitch)
		return
	}
	c.CamYaw = astro.LerpAngle(c.CamYaw, c.Yaw+CameraYawOffset, CameraYawSmoothing)
	c.CamPitch = astro.Lerp(c.CamPitch, CameraRestPitch, CameraPitchSmooth)
}
