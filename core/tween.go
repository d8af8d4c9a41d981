package core

import (
	"math"
	"time"

	"github.com/outbreaklabs/covid-dashboard/model"
)

// DefaultTweenDuration is the fixed length of an animated view-transform
// change.
const DefaultTweenDuration = 750 * time.Millisecond

// TransformTween interpolates the map's view transform toward a target
// over a fixed duration. A new target replaces the old one and restarts
// interpolation from the current transform; requests never stack.
type TransformTween struct {
	current  model.ViewTransform
	start    model.ViewTransform
	target   model.ViewTransform
	duration time.Duration
	elapsed  time.Duration
	active   bool
}

// NewTransformTween starts at the given transform, idle.
func NewTransformTween(initial model.ViewTransform, duration time.Duration) *TransformTween {
	if duration <= 0 {
		duration = DefaultTweenDuration
	}
	return &TransformTween{current: initial, start: initial, target: initial, duration: duration}
}

// To retargets the tween. Interpolation restarts from the current
// transform, so an in-flight animation bends toward the new target rather
// than jumping.
func (tw *TransformTween) To(target model.ViewTransform) {
	tw.start = tw.current
	tw.target = target
	tw.elapsed = 0
	tw.active = true
}

// Jump sets the transform immediately and cancels any animation.
func (tw *TransformTween) Jump(t model.ViewTransform) {
	tw.current = t
	tw.start = t
	tw.target = t
	tw.elapsed = 0
	tw.active = false
}

// Step advances the animation by dt and returns the current transform.
// On completion the transform lands exactly on the target.
func (tw *TransformTween) Step(dt time.Duration) model.ViewTransform {
	if !tw.active {
		return tw.current
	}
	tw.elapsed += dt
	if tw.elapsed >= tw.duration {
		tw.current = tw.target
		tw.start = tw.target
		tw.active = false
		return tw.current
	}
	t := easeOutCubic(float64(tw.elapsed) / float64(tw.duration))
	tw.current = model.ViewTransform{
		TranslateX: tw.start.TranslateX + (tw.target.TranslateX-tw.start.TranslateX)*t,
		TranslateY: tw.start.TranslateY + (tw.target.TranslateY-tw.start.TranslateY)*t,
		Scale:      tw.start.Scale + (tw.target.Scale-tw.start.Scale)*t,
	}
	return tw.current
}

// Current returns the transform as of the last Step or Jump.
func (tw *TransformTween) Current() model.ViewTransform { return tw.current }

// Target returns the transform the tween is heading toward.
func (tw *TransformTween) Target() model.ViewTransform { return tw.target }

// Active reports whether an animation is in flight.
func (tw *TransformTween) Active() bool { return tw.active }

func easeOutCubic(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return 1 - math.Pow(1-t, 3)
}
