package printer

import (
	"encoding/json"
)

type jsonVariable struct {
	Name      string `json:"name"`
	Address   int    `json:"address"`
	Size      int    `json:"size"`
	Contents  string `json:"contents,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

type jsonSegment struct {
	Address int    `json:"address"`
	Length  int    `json:"length"`
	Free    bool   `json:"free"`
	Owner   string `json:"owner,omitempty"`
}

type jsonStats struct {
	PoolSize      int     `json:"pool_size"`
	FreeBytes     int     `json:"free_bytes"`
	UsedBytes     int     `json:"used_bytes"`
	FreeSegments  int     `json:"free_segments"`
	UsedSegments  int     `json:"used_segments"`
	LargestFree   int     `json:"largest_free"`
	Fragmentation float64 `json:"fragmentation"`
}

type jsonState struct {
	Strategy  string         `json:"strategy"`
	Variables []jsonVariable `json:"variables"`
	Segments  []jsonSegment  `json:"segments"`
	Stats     jsonStats      `json:"stats"`
}

type jsonLeaks struct {
	Leaks []jsonVariable `json:"leaks"`
}

func (p *Printer) printStateJSON() error {
	st := p.src.Stats()
	out := jsonState{
		Strategy:  p.src.Strategy().String(),
		Variables: make([]jsonVariable, 0),
		Segments:  make([]jsonSegment, 0),
		Stats: jsonStats{
			PoolSize:      st.PoolSize,
			FreeBytes:     st.FreeBytes,
			UsedBytes:     st.UsedBytes,
			FreeSegments:  st.FreeSegments,
			UsedSegments:  st.UsedSegments,
			LargestFree:   st.LargestFree,
			Fragmentation: st.Fragmentation(),
		},
	}

	for _, v := range p.src.Variables() {
		jv := jsonVariable{Name: v.Name, Address: v.Addr, Size: v.Size}
		if p.opts.ShowContents {
			data, cut, err := p.preview(v.Name)
			if err != nil {
				return err
			}
			jv.Contents = string(data)
			jv.Truncated = cut
		}
		out.Variables = append(out.Variables, jv)
	}
	for _, s := range p.src.Segments() {
		out.Segments = append(out.Segments, jsonSegment{
			Address: s.Addr,
			Length:  s.Len,
			Free:    s.Free,
			Owner:   s.Owner,
		})
	}
	return p.encode(out)
}

func (p *Printer) printLeaksJSON() error {
	out := jsonLeaks{Leaks: make([]jsonVariable, 0)}
	for _, v := range p.src.Variables() {
		out.Leaks = append(out.Leaks, jsonVariable{Name: v.Name, Address: v.Addr, Size: v.Size})
	}
	return p.encode(out)
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
