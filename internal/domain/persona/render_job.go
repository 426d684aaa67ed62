package persona

import (
	"net/url"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// JobType is a studio pipeline
type JobType string

const (
	JobLipsyncOnly  JobType = "lipsync_only"
	JobVideoRender  JobType = "video_render"
	JobPersonaBuild JobType = "persona_build"
)

// IsValid reports whether the job type is known
func (t JobType) IsValid() bool {
	switch t {
	case JobLipsyncOnly, JobVideoRender, JobPersonaBuild:
		return true
	}
	return false
}

// JobStatus is the local view of a studio job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

var (
	ErrUnknownJobType = shared.NewDomainError("UNKNOWN_JOB_TYPE", "Job type must be lipsync_only, video_render or persona_build")
	ErrAvatarRequired = shared.NewDomainError("AVATAR_REQUIRED", "Persona needs an avatar before rendering")
	ErrAudioRequired  = shared.NewDomainError("AUDIO_REQUIRED", "An audio URL is required for this job type")

	ErrInvalidMusicURL    = shared.NewDomainError("INVALID_MUSIC_URL", "Music URL must be http(s)")
	ErrInvalidAmbienceURL = shared.NewDomainError("INVALID_AMBIENCE_URL", "Ambience URL must be http(s)")
)

// Caption is a timed subtitle burned into rendered video
type Caption struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Take requests one base take for persona_build
type Take struct {
	Emotion string `json:"emotion"`
	Angle   string `json:"angle"`
}

// RenderRequest is what the caller asks the studio to produce. Music and
// ambience are mixed under the voice of a video_render.
type RenderRequest struct {
	JobType     JobType
	Quality     string
	AudioURL    string
	MusicURL    string
	AmbienceURL string
	Captions    []Caption
	Takes       []Take
}

// RenderJob tracks one job on the studio worker
type RenderJob struct {
	shared.OwnedAggregateRoot
	PersonaID     uuid.UUID
	JobType       JobType
	Quality       string
	Status        JobStatus
	ExternalJobID string
	Input         map[string]any
	OutputURLs    map[string]string
	Metadata      map[string]any
	Error         string
	DurationMS    int64
	FinishedAt    *time.Time
}

// NewRenderJob validates a request against the persona and the preset catalogue
func NewRenderJob(p *Persona, req RenderRequest) (*RenderJob, error) {
	if !req.JobType.IsValid() {
		return nil, ErrUnknownJobType
	}
	quality := req.Quality
	if quality == "" {
		quality = p.QualityPreset
	}
	if quality == "" {
		quality = DefaultQuality
	}
	if _, ok := LookupPreset(quality); !ok {
		return nil, ErrUnknownQuality
	}
	if p.AvatarURL == "" {
		return nil, ErrAvatarRequired
	}
	if req.JobType != JobPersonaBuild {
		if !isHTTPURL(req.AudioURL) {
			return nil, ErrAudioRequired
		}
	}
	if req.MusicURL != "" && !isHTTPURL(req.MusicURL) {
		return nil, ErrInvalidMusicURL
	}
	if req.AmbienceURL != "" && !isHTTPURL(req.AmbienceURL) {
		return nil, ErrInvalidAmbienceURL
	}

	job := &RenderJob{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(p.OwnerID),
		PersonaID:          p.ID,
		JobType:            req.JobType,
		Quality:            quality,
		Status:             JobQueued,
		OutputURLs:         map[string]string{},
		Metadata:           map[string]any{},
	}
	job.Input = job.workerInput(p, req)
	return job, nil
}

// workerInput is the payload understood by the studio worker
func (j *RenderJob) workerInput(p *Persona, req RenderRequest) map[string]any {
	in := map[string]any{
		"job_type": string(j.JobType),
		"job_id":   j.ID.String(),
		"quality":  j.Quality,
	}
	switch j.JobType {
	case JobPersonaBuild:
		in["persona_id"] = p.ID.String()
		in["primary_image"] = p.AvatarURL
		takes := req.Takes
		if len(takes) == 0 {
			takes = []Take{{Emotion: "neutral", Angle: "front"}}
		}
		in["takes_to_generate"] = takes
	default:
		in["source_image"] = p.AvatarURL
		in["driven_audio"] = req.AudioURL
		if j.JobType == JobVideoRender {
			if req.MusicURL != "" {
				in["music_url"] = req.MusicURL
			}
			if req.AmbienceURL != "" {
				in["ambience_url"] = req.AmbienceURL
			}
			if len(req.Captions) > 0 {
				in["captions"] = req.Captions
			}
		}
	}
	return in
}

// Submitted records the worker's job id
func (j *RenderJob) Submitted(externalID string) {
	j.ExternalJobID = externalID
	j.IncrementVersion()
}

// IsTerminal reports whether the job has finished
func (j *RenderJob) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// MarkRunning moves a queued job to running
func (j *RenderJob) MarkRunning() {
	if j.Status == JobQueued {
		j.Status = JobRunning
		j.IncrementVersion()
	}
}

// Complete stores the worker output
func (j *RenderJob) Complete(outputs map[string]string, metadata map[string]any, durationMS int64) {
	if j.IsTerminal() {
		return
	}
	now := time.Now()
	j.Status = JobCompleted
	if outputs != nil {
		j.OutputURLs = outputs
	}
	if metadata != nil {
		j.Metadata = metadata
	}
	j.DurationMS = durationMS
	j.FinishedAt = &now
	j.IncrementVersion()
}

// Fail stores the worker error
func (j *RenderJob) Fail(reason string) {
	if j.IsTerminal() {
		return
	}
	now := time.Now()
	j.Status = JobFailed
	j.Error = reason
	j.FinishedAt = &now
	j.IncrementVersion()
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
