package score

import (
	"math"

	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/signal"
)

// Supply is the competitive-saturation score on a 0-10 scale, reported with
// the sub-scores that produced it. Higher = more saturated.
type Supply struct {
	Score float64

	// VolumeScore is the 0-10 publishing-velocity sub-score.
	VolumeScore float64

	// ChannelScore is the 0-10 log-compressed incumbent-size sub-score.
	ChannelScore float64
}

// EstimateSupply derives the supply score. Monotonically non-decreasing in
// both publishing velocity and average channel size; zero activity and zero
// channel size map to 0.
func EstimateSupply(m signal.Metrics, cfg config.Config) Supply {
	volumeScore := clamp(math.Log10(float64(m.VideosLast30Days)+1)*cfg.Supply.VolumeLogScale, 0, 10)

	channelScore := 0.0
	if m.AvgChannelSize >= 1 {
		channelScore = math.Log10(m.AvgChannelSize) / cfg.Supply.ChannelLogCeiling * 10
	}
	channelScore = clamp(channelScore, 0, 10)

	s := volumeScore*cfg.Supply.VolumeWeight + channelScore*cfg.Supply.ChannelWeight
	return Supply{
		Score:        clamp(s, 0, 10),
		VolumeScore:  volumeScore,
		ChannelScore: channelScore,
	}
}
