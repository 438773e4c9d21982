package dataset

import (
	"fmt"
	"time"

	"github.com/atlasmaps/atlas/mods/projection"
	"github.com/tidwall/gjson"
)

// FrameSet is a parsed time-series document: the artifact it drives and the
// ordered frames applied one per tick.
type FrameSet struct {
	Artifact string
	Interval time.Duration
	Frames   []projection.Frame
}

// Parse reads a frame-set document of the form
//
//	{
//	  "artifact": "height",
//	  "interval": 500,
//	  "frames": [
//	    {"index": 0, "values": {"zone-a": 10}},
//	    {"index": 1, "values": {"zone-a": 20}}
//	  ]
//	}
//
// "interval" is in milliseconds and optional. Frame values may be numeric or
// strings (e.g. colors). Frames must be non-empty and ascending by index.
func Parse(data []byte) (*FrameSet, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("frameset invalid json")
	}
	doc := gjson.ParseBytes(data)
	artifact := doc.Get("artifact").String()
	if artifact == "" {
		return nil, fmt.Errorf("frameset missing artifact")
	}
	ret := &FrameSet{Artifact: artifact}
	if iv := doc.Get("interval"); iv.Exists() {
		ms := iv.Int()
		if ms <= 0 {
			return nil, fmt.Errorf("frameset invalid interval %d", ms)
		}
		ret.Interval = time.Duration(ms) * time.Millisecond
	}
	framesNode := doc.Get("frames")
	if !framesNode.IsArray() {
		return nil, fmt.Errorf("frameset missing frames")
	}
	var parseErr error
	framesNode.ForEach(func(_, fr gjson.Result) bool {
		idxNode := fr.Get("index")
		if !idxNode.Exists() {
			parseErr = fmt.Errorf("frameset frame #%d missing index", len(ret.Frames))
			return false
		}
		frame := projection.Frame{
			Index:  int(idxNode.Int()),
			Values: projection.Values{},
		}
		fr.Get("values").ForEach(func(key, value gjson.Result) bool {
			switch value.Type {
			case gjson.Number:
				frame.Values[key.String()] = value.Float()
			case gjson.String:
				frame.Values[key.String()] = value.String()
			default:
				parseErr = fmt.Errorf("frameset frame index %d entity %q unsupported value", frame.Index, key.String())
				return false
			}
			return true
		})
		if parseErr != nil {
			return false
		}
		ret.Frames = append(ret.Frames, frame)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(ret.Frames) == 0 {
		return nil, fmt.Errorf("frameset has no frames")
	}
	for i := 1; i < len(ret.Frames); i++ {
		if ret.Frames[i].Index <= ret.Frames[i-1].Index {
			return nil, fmt.Errorf("frameset frames not ascending at #%d", i)
		}
	}
	return ret, nil
}
