// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/ballot-desk/election"
	"github.com/danielhkuo/ballot-desk/models"
)

// ID is an opaque location identifier. Reference files use either numbers
// or strings; both decode to the same text.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("location id must be a string or number: %s", b)
	}
	*id = ID(n.String())
	return nil
}

func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("location id must be a scalar (line %d)", node.Line)
	}
	*id = ID(node.Value)
	return nil
}

// Ref is an {id, name} pair as shown in a dropdown.
type Ref struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Municipality struct {
	Ref `yaml:",inline"`
}

type District struct {
	Ref              `yaml:",inline"`
	MunicipalityList []Municipality `json:"municipalityList" yaml:"municipalityList"`
}

type Province struct {
	Ref          `yaml:",inline"`
	DistrictList []District `json:"districtList" yaml:"districtList"`
}

type document struct {
	ProvinceList []Province `json:"provinceList" yaml:"provinceList"`
}

// Tree is the province -> district -> municipality hierarchy. It is never
// modified after Parse returns, so concurrent reads are safe.
type Tree struct {
	provinces []Province

	provinceIdx map[ID]int
	districtIdx map[ID]districtPos
}

type districtPos struct {
	province int
	district int
}

// Load reads a reference file. Files ending in .yaml or .yml are decoded
// as YAML, anything else as JSON.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read location data: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse decodes JSON reference data.
func Parse(data []byte) (*Tree, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse location data: %w", err)
	}
	return build(doc)
}

// ParseYAML decodes YAML reference data with the same shape as the JSON.
func ParseYAML(data []byte) (*Tree, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse location data: %w", err)
	}
	return build(doc)
}

func build(doc document) (*Tree, error) {
	if len(doc.ProvinceList) == 0 {
		return nil, fmt.Errorf("location data has no provinces")
	}
	t := &Tree{
		provinces:   doc.ProvinceList,
		provinceIdx: make(map[ID]int, len(doc.ProvinceList)),
		districtIdx: make(map[ID]districtPos),
	}
	for pi, p := range doc.ProvinceList {
		if _, dup := t.provinceIdx[p.ID]; dup {
			return nil, fmt.Errorf("duplicate province id %q", p.ID)
		}
		t.provinceIdx[p.ID] = pi
		for di, d := range p.DistrictList {
			if _, dup := t.districtIdx[d.ID]; dup {
				return nil, fmt.Errorf("duplicate district id %q", d.ID)
			}
			t.districtIdx[d.ID] = districtPos{province: pi, district: di}
		}
	}
	return t, nil
}

// Provinces lists every province in file order.
func (t *Tree) Provinces() []Ref {
	refs := make([]Ref, len(t.provinces))
	for i, p := range t.provinces {
		refs[i] = p.Ref
	}
	return refs
}

// Districts lists the districts of a province. Choosing a province resets
// both lower levels, so callers repopulate from this list alone.
func (t *Tree) Districts(provinceID string) ([]Ref, error) {
	pi, ok := t.provinceIdx[ID(provinceID)]
	if !ok {
		return nil, election.Errorf(election.NotFound, "province %q not found", provinceID)
	}
	ds := t.provinces[pi].DistrictList
	refs := make([]Ref, len(ds))
	for i, d := range ds {
		refs[i] = d.Ref
	}
	return refs, nil
}

// Municipalities lists the municipalities of a district.
func (t *Tree) Municipalities(districtID string) ([]Ref, error) {
	pos, ok := t.districtIdx[ID(districtID)]
	if !ok {
		return nil, election.Errorf(election.NotFound, "district %q not found", districtID)
	}
	ms := t.provinces[pos.province].DistrictList[pos.district].MunicipalityList
	refs := make([]Ref, len(ms))
	for i, m := range ms {
		refs[i] = m.Ref
	}
	return refs, nil
}

// Resolve checks each selected id exists in its parent's list and returns
// the names to stamp on the submitted record.
func (t *Tree) Resolve(sel models.LocationSelection) (models.Location, error) {
	pi, ok := t.provinceIdx[ID(sel.ProvinceID)]
	if !ok {
		return models.Location{}, election.Errorf(election.InvalidInput, "select a valid province")
	}
	p := t.provinces[pi]

	pos, ok := t.districtIdx[ID(sel.DistrictID)]
	if !ok || pos.province != pi {
		return models.Location{}, election.Errorf(election.InvalidInput, "select a valid district in %s", p.Name)
	}
	d := p.DistrictList[pos.district]

	for _, m := range d.MunicipalityList {
		if m.ID == ID(sel.MunicipalityID) {
			return models.Location{
				Province:     p.Name,
				District:     d.Name,
				Municipality: m.Name,
				LocalArea:    strings.TrimSpace(sel.LocalArea),
			}, nil
		}
	}
	return models.Location{}, election.Errorf(election.InvalidInput, "select a valid municipality in %s", d.Name)
}
