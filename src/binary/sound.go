package binary

import logger "github.com/sirupsen/logrus"

type SoundCue string

const (
	SoundTick  SoundCue = "tick"
	SoundFinal SoundCue = "final"
)

// SoundPlayer plays countdown cues. Implementations must not block.
type SoundPlayer interface {
	Play(cue SoundCue)
}

// LogPlayer stands in for audio output in headless sessions.
type LogPlayer struct {
	log *logger.Entry
}

func NewLogPlayer() *LogPlayer {
	return &LogPlayer{log: logger.WithField("component", "sound")}
}

func (p *LogPlayer) Play(cue SoundCue) {
	p.log.WithField("cue", cue).Debug("play")
}
