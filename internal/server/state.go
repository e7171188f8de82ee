package server

import (
	"github.com/san-kum/mapstory/internal/camera"
	"github.com/san-kum/mapstory/internal/trace"
)

// Snapshot is the engine state a client renders from.
type Snapshot struct {
	Page         string      `json:"page"`
	Scene        string      `json:"scene"`
	SubScene     string      `json:"sub_scene"`
	ContentIndex int         `json:"content_index"`
	Main         int         `json:"main"`
	Content      int         `json:"content"`
	Playing      bool        `json:"playing"`
	Waiting      bool        `json:"waiting"`
	Locked       bool        `json:"locked"`
	Progress     float64     `json:"progress"`
	ClockMS      int64       `json:"clock_ms"`
	Caption      string      `json:"caption,omitempty"`
	Layers       []string    `json:"layers"`
	View         camera.View `json:"view"`
}

type StepInfo struct {
	Name  string   `json:"name"`
	Scene string   `json:"scene"`
	Beats []BeatMS `json:"beats"`
}

type BeatMS struct {
	DurationMS int64  `json:"duration_ms"`
	Primary    bool   `json:"primary,omitempty"`
	Caption    string `json:"caption,omitempty"`
}

type LayerInfo struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Visibility string `json:"visibility"`
}

const (
	msgHello  = "hello"
	msgEvent  = "event"
	msgResult = "result"
	msgError  = "error"
)

// message is every frame the websocket sends.
type message struct {
	Type     string       `json:"type"`
	Client   string       `json:"client,omitempty"`
	Event    *trace.Event `json:"event,omitempty"`
	State    *Snapshot    `json:"state,omitempty"`
	Accepted *bool        `json:"accepted,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// snapshot must run on the loop goroutine.
func (s *Server) snapshot() *Snapshot {
	st := s.eng.State()
	main, content := s.eng.Position()
	snap := &Snapshot{
		Page:         string(st.Page),
		Scene:        string(st.Scene),
		SubScene:     string(st.SubScene),
		ContentIndex: st.ContentIndex,
		Main:         main,
		Content:      content,
		Playing:      s.eng.Playing(),
		Waiting:      s.eng.Waiting(),
		Locked:       s.eng.Locked(),
		Progress:     s.eng.Progress(),
		ClockMS:      s.eng.Now().Milliseconds(),
		Layers:       s.eng.ActiveIDs(),
		View:         s.eng.View(),
	}
	if caption, shown := s.eng.Overlay(); shown {
		snap.Caption = caption
	}
	return snap
}

func (s *Server) steps() []StepInfo {
	steps := s.eng.Steps()
	out := make([]StepInfo, len(steps))
	for i, st := range steps {
		info := StepInfo{Name: st.Name, Scene: string(st.Scene), Beats: make([]BeatMS, 0, len(st.Contents))}
		for _, c := range st.Contents {
			info.Beats = append(info.Beats, BeatMS{DurationMS: c.Duration.Milliseconds(), Primary: c.Primary, Caption: c.Caption})
		}
		out[i] = info
	}
	return out
}

func (s *Server) layers() []LayerInfo {
	active := s.eng.Active()
	out := make([]LayerInfo, len(active))
	for i, e := range active {
		out[i] = LayerInfo{ID: e.Descriptor.ID, Kind: string(e.Descriptor.Kind), Visibility: e.Visibility.String()}
	}
	return out
}
