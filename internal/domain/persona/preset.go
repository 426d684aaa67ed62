package persona

import "github.com/alfred/backend/internal/domain/shared"

// DefaultQuality is used when a job does not name a preset
const DefaultQuality = "standard"

// ErrUnknownQuality is returned for presets outside the catalogue
var ErrUnknownQuality = shared.NewDomainError("UNKNOWN_QUALITY", "Unknown quality preset")

// QualityPreset tunes the studio worker's render pipeline
type QualityPreset struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	FPS               int     `json:"fps"`
	BatchSize         int     `json:"batch_size"`
	FaceEnhance       bool    `json:"face_enhance"`
	Upscale           bool    `json:"upscale"`
	UpscaleFactor     int     `json:"upscale_factor"`
	VideoBitrate      string  `json:"video_bitrate"`
	AudioBitrate      string  `json:"audio_bitrate"`
	CRF               int     `json:"crf"`
	EncoderPreset     string  `json:"preset"`
	ColorGrading      bool    `json:"color_grading"`
	TemporalSmoothing bool    `json:"temporal_smoothing"`
	FilmGrain         float64 `json:"film_grain"`
}

var presets = []QualityPreset{
	{Name: "realtime", Description: "Low latency for live avatars", FPS: 25, BatchSize: 16, UpscaleFactor: 1, VideoBitrate: "2M", AudioBitrate: "128k", CRF: 28, EncoderPreset: "ultrafast"},
	{Name: "draft", Description: "Quick previews", FPS: 25, BatchSize: 8, UpscaleFactor: 1, VideoBitrate: "4M", AudioBitrate: "128k", CRF: 26, EncoderPreset: "fast"},
	{Name: "standard", Description: "Balanced quality with face enhancement", FPS: 30, BatchSize: 4, FaceEnhance: true, UpscaleFactor: 1, VideoBitrate: "8M", AudioBitrate: "192k", CRF: 23, EncoderPreset: "medium"},
	{Name: "high", Description: "Premium output with 2x upscale", FPS: 30, BatchSize: 2, FaceEnhance: true, Upscale: true, UpscaleFactor: 2, VideoBitrate: "12M", AudioBitrate: "256k", CRF: 20, EncoderPreset: "slow"},
	{Name: "pixar", Description: "Studio quality with color grading", FPS: 30, BatchSize: 1, FaceEnhance: true, Upscale: true, UpscaleFactor: 2, VideoBitrate: "20M", AudioBitrate: "320k", CRF: 17, EncoderPreset: "slow", ColorGrading: true, TemporalSmoothing: true},
	{Name: "cinema", Description: "Theatrical quality with 4x upscale and film grain", FPS: 30, BatchSize: 1, FaceEnhance: true, Upscale: true, UpscaleFactor: 4, VideoBitrate: "40M", AudioBitrate: "320k", CRF: 14, EncoderPreset: "veryslow", ColorGrading: true, TemporalSmoothing: true, FilmGrain: 0.02},
}

// Presets lists the presets from fastest to highest quality
func Presets() []QualityPreset {
	out := make([]QualityPreset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by name
func LookupPreset(name string) (QualityPreset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return QualityPreset{}, false
}
