// Package project is the persistent composition: sample rate, timeline,
// and clip store, plus the instrument currently wired to it (spec
// section 4.6). A Project directory holds exactly one file,
// project.json; clip audio is embedded in that file, not referenced via
// sidecar files.
package project

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	jsoniter "github.com/json-iterator/go"

	"github.com/branchpanic/operator/internal/clip"
	"github.com/branchpanic/operator/internal/clipstore"
	"github.com/branchpanic/operator/internal/engineerr"
	"github.com/branchpanic/operator/internal/instrument"
	"github.com/branchpanic/operator/internal/timeline"
	"github.com/branchpanic/operator/internal/track"
)

// DefaultSampleRate is used for newly created projects.
const DefaultSampleRate = 44100

// DefaultTrackCount is the fixed number of tracks a fresh timeline has.
const DefaultTrackCount = 4

// fileName is the single file a Project directory contains.
const fileName = "project.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Project is the sample rate, timeline, and clip store, plus whichever
// Instrument is currently wired in (not persisted — reconstructed fresh on
// load, per spec section 3).
type Project struct {
	SampleRate int
	Timeline   *timeline.Timeline
	ClipStore  *clipstore.ClipStore[clip.Clip]
	Instrument instrument.Instrument
}

// New returns a fresh Project with DefaultTrackCount empty tracks and a
// default sine instrument.
func New(sampleRate int) *Project {
	return &Project{
		SampleRate: sampleRate,
		Timeline:   timeline.New(DefaultTrackCount),
		ClipStore:  clipstore.New[clip.Clip](),
		Instrument: instrument.NewSine(),
	}
}

// LoadWav decodes path, validates its sample rate against the Project's,
// inserts it into the ClipStore, and returns its new id.
func (p *Project) LoadWav(path string) (clipstore.ID, error) {
	c, err := clip.LoadWav(path, p.SampleRate)
	if err != nil {
		return 0, err
	}
	return p.ClipStore.Add(c), nil
}

// PlaceClip appends a placement of id at time on trackIndex and returns a
// pointer to the new ClipInstance.
func (p *Project) PlaceClip(trackIndex int, t track.Time, id clipstore.ID) (*track.ClipInstance, error) {
	if trackIndex < 0 || trackIndex >= len(p.Timeline.Tracks) {
		return nil, &engineerr.Io{Op: "placeClip", Cause: errOutOfRange("track", trackIndex)}
	}
	return p.Timeline.Tracks[trackIndex].AddClip(t, id), nil
}

// MoveClip repositions the placement at instanceIndex on trackIndex.
func (p *Project) MoveClip(trackIndex, instanceIndex int, newTime track.Time) error {
	if trackIndex < 0 || trackIndex >= len(p.Timeline.Tracks) {
		return &engineerr.Io{Op: "moveClip", Cause: errOutOfRange("track", trackIndex)}
	}
	if !p.Timeline.Tracks[trackIndex].MoveClip(instanceIndex, newTime) {
		return &engineerr.Io{Op: "moveClip", Cause: errOutOfRange("instance", instanceIndex)}
	}
	return nil
}

// diskClipInstance is the serialized shape of a track.ClipInstance.
type diskClipInstance struct {
	Time   int64        `json:"time"`
	ClipID clipstore.ID `json:"clipId"`
}

// diskClip is the serialized shape of a clip.Clip.
type diskClip struct {
	Data []float32 `json:"data"`
}

// diskProject is the on-disk shape of project.json: field names included,
// no version tag (spec section 4.6).
type diskProject struct {
	SampleRate int                       `json:"sampleRate"`
	Tracks     [][]diskClipInstance      `json:"tracks"`
	Clips      map[clipstore.ID]diskClip `json:"clips"`
}

// Save writes project.json into dir, creating dir if needed.
func (p *Project) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &engineerr.Io{Op: "save", Cause: err}
	}

	disk := diskProject{
		SampleRate: p.SampleRate,
		Tracks:     make([][]diskClipInstance, len(p.Timeline.Tracks)),
		Clips:      make(map[clipstore.ID]diskClip),
	}

	for i, tr := range p.Timeline.Tracks {
		instances := tr.Instances()
		row := make([]diskClipInstance, len(instances))
		for j, inst := range instances {
			row[j] = diskClipInstance{Time: int64(inst.Time), ClipID: inst.ClipID}
		}
		disk.Tracks[i] = row
	}

	for id, c := range p.ClipStore.Snapshot() {
		disk.Clips[id] = diskClip{Data: c.Data}
	}

	data, err := json.MarshalIndent(disk, "", "  ")
	if err != nil {
		return &engineerr.SerializeError{Message: err.Error()}
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &engineerr.Io{Op: "save", Cause: err}
	}

	return nil
}

// Load reads project.json from dir and constructs a fresh Project with a
// freshly-constructed default instrument (spec section 4.6).
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &engineerr.Io{Op: "load", Cause: err}
	}

	var disk diskProject
	if err := json.Unmarshal(data, &disk); err != nil {
		return nil, &engineerr.DeserializeError{Message: err.Error()}
	}

	p := &Project{
		SampleRate: disk.SampleRate,
		Timeline:   timeline.New(len(disk.Tracks)),
		ClipStore:  clipstore.New[clip.Clip](),
		Instrument: instrument.NewSine(),
	}

	diskClips := make(map[clipstore.ID]clip.Clip, len(disk.Clips))
	for id, dc := range disk.Clips {
		diskClips[id] = clip.New(dc.Data)
	}
	p.ClipStore.Restore(diskClips)

	for i, row := range disk.Tracks {
		for _, inst := range row {
			p.Timeline.Tracks[i].AddClip(track.Time(inst.Time), inst.ClipID)
		}
	}

	return p, nil
}

// ExportWav renders the full timeline and writes it as 16-bit mono PCM WAV
// at the Project's sample rate (spec section 4.6 and section 6).
func (p *Project) ExportWav(path string) error {
	buf := p.Timeline.RenderAll(p.ClipStore)

	ints := make([]int, len(buf))
	for i, s := range buf {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		ints[i] = int(math.Round(float64(s) * 32767))
	}

	f, err := os.Create(path)
	if err != nil {
		return &engineerr.Io{Op: "exportWav", Cause: err}
	}
	defer f.Close()

	enc := wav.NewEncoder(f, p.SampleRate, 16, 1, 1)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: p.SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return &engineerr.Io{Op: "exportWav", Cause: err}
	}
	if err := enc.Close(); err != nil {
		return &engineerr.Io{Op: "exportWav", Cause: err}
	}

	return nil
}

func errOutOfRange(what string, idx int) error {
	return fmt.Errorf("%s index out of range: %d", what, idx)
}
