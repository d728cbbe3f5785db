package state

import (
	"math"
	"time"
)

// PlaybackState steps through the time axis of a reach set.
type PlaybackState struct {
	CurrentTime float64 // Position on the time axis in steps
	MaxTime     float64 // Last time step
	Speed       float64 // Steps per second
	Playing     bool

	lastUpdate time.Time
	now        func() time.Time
}

// NewPlaybackState creates a paused playback over 0..maxStep.
func NewPlaybackState(maxStep int) *PlaybackState {
	return &PlaybackState{
		MaxTime:    float64(maxStep),
		Speed:      2,
		lastUpdate: time.Now(),
		now:        time.Now,
	}
}

// TogglePlay toggles playback on/off.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = p.now()
		// Restart when at the end
		if p.CurrentTime >= p.MaxTime {
			p.CurrentTime = 0
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset rewinds to step 0.
func (p *PlaybackState) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance moves forward by the time elapsed since the last update.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}
	now := p.now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	p.CurrentTime += elapsed * p.Speed
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime seeks to t, clamped to the time axis.
func (p *PlaybackState) SetTime(t float64) {
	p.CurrentTime = math.Max(0, math.Min(t, p.MaxTime))
}

// Step returns the current whole time step.
func (p *PlaybackState) Step() int {
	return int(math.Floor(p.CurrentTime))
}

// StepForward pauses and moves to the next whole step.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(math.Floor(p.CurrentTime) + 1)
}

// StepBack pauses and moves to the previous whole step.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(math.Ceil(p.CurrentTime) - 1)
}

// SetSpeed sets the steps per second, clamped to [0.25, 20].
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = math.Max(0.25, math.Min(speed, 20))
}

// Progress returns current progress as 0-1.
func (p *PlaybackState) Progress() float64 {
	if p.MaxTime <= 0 {
		return 0
	}
	return p.CurrentTime / p.MaxTime
}
