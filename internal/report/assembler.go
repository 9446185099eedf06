package report

import (
	"epldash/internal/dataprocessing"
)

// Section is one named aggregation of the artifact
type Section struct {
	Name  SectionName          `json:"name"`
	Sheet string               `json:"sheet"`
	Table dataprocessing.Table `json:"table"`
}

// Artifact is the ordered collection of report sections
type Artifact struct {
	Sections []Section `json:"sections"`
}

// Sheet is the tabular form of a section handed to serializers.
// Key cells are strings, counts int, other metrics float64, and undefined
// metrics nil.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Assemble builds the artifact for the enabled sections of a filtered view.
// Sections are emitted in presentation order regardless of the order of
// enabled. A section whose optional column is missing from the view is
// omitted. Unknown names are ignored.
func Assemble(view *dataprocessing.View, enabled []SectionName) *Artifact {
	want := make(map[SectionName]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}

	caps := view.Capabilities()
	artifact := &Artifact{Sections: []Section{}}
	for _, d := range definitions {
		if !want[d.name] {
			continue
		}
		if d.requires != "" && !caps.Has(d.requires) {
			continue
		}
		artifact.Sections = append(artifact.Sections, Section{
			Name:  d.name,
			Sheet: d.sheet,
			Table: d.build(view, d),
		})
	}
	return artifact
}

// Build computes a single section. The boolean is false when the view lacks
// the optional column the section needs.
func Build(view *dataprocessing.View, name SectionName) (Section, bool, error) {
	d, ok := lookup(name)
	if !ok {
		return Section{}, false, ErrUnknownSection
	}
	if d.requires != "" && !view.Capabilities().Has(d.requires) {
		return Section{}, false, nil
	}
	return Section{Name: d.name, Sheet: d.sheet, Table: d.build(view, d)}, true, nil
}

// Names returns the section names in artifact order
func (a *Artifact) Names() []SectionName {
	names := make([]SectionName, len(a.Sections))
	for i, s := range a.Sections {
		names[i] = s.Name
	}
	return names
}

// Section returns the named section
func (a *Artifact) Section(name SectionName) (Section, bool) {
	for _, s := range a.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Sheets converts every section into a sheet, in artifact order
func (a *Artifact) Sheets() []Sheet {
	sheets := make([]Sheet, 0, len(a.Sections))
	for _, s := range a.Sections {
		sheets = append(sheets, s.ToSheet())
	}
	return sheets
}

// ToSheet flattens the section table into header and rows
func (s Section) ToSheet() Sheet {
	t := s.Table
	rows := make([][]any, t.Len())
	for i, r := range t.Rows {
		cells := make([]any, 0, len(t.Keys)+len(t.Metrics))
		for _, k := range r.Key {
			cells = append(cells, k)
		}
		for j, v := range t.Values(i) {
			switch {
			case !v.Valid:
				cells = append(cells, nil)
			case t.Metrics[j] == dataprocessing.MetricCount:
				cells = append(cells, int(v.Float64))
			default:
				cells = append(cells, v.Float64)
			}
		}
		rows[i] = cells
	}
	return Sheet{Name: s.Sheet, Header: t.Header(), Rows: rows}
}
