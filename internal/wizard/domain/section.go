package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Section names one slice of the ProjectRecord.
type Section string

const (
	SectionProjectInfo     Section = "projectInfo"
	SectionProperty        Section = "property"
	SectionCompliance      Section = "compliance"
	SectionTokenAllocation Section = "tokenAllocation"
	SectionDistribution    Section = "distribution"
	SectionJurisdiction    Section = "jurisdiction"
)

// Sections lists every section in record order.
var Sections = []Section{
	SectionProjectInfo,
	SectionProperty,
	SectionCompliance,
	SectionTokenAllocation,
	SectionDistribution,
	SectionJurisdiction,
}

// sectionFields holds the fixed json key set of each section's shape. A key
// maps to true when its field accepts null.
var sectionFields = map[Section]map[string]bool{
	SectionProjectInfo:     jsonFields(ProjectInfo{}),
	SectionProperty:        jsonFields(Property{}),
	SectionCompliance:      jsonFields(Compliance{}),
	SectionTokenAllocation: jsonFields(TokenAllocation{}),
	SectionDistribution:    jsonFields(Distribution{}),
	SectionJurisdiction:    jsonFields(Jurisdiction{}),
}

func ParseSection(s string) (Section, error) {
	sec := Section(s)
	if _, ok := sectionFields[sec]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return sec, nil
}

// Fields returns the sorted json keys accepted by a section.
func (s Section) Fields() []string {
	known := sectionFields[s]
	out := make([]string, 0, len(known))
	for k := range known {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Merge shallow-merges a JSON object into one section. Keys present in partial
// overwrite, absent keys are kept. Keys outside the section's shape are
// rejected and a failed merge leaves the record unchanged.
func (r *ProjectRecord) Merge(section Section, partial json.RawMessage) error {
	known, ok := sectionFields[section]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(partial, &keys); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if keys == nil {
		return fmt.Errorf("%w: patch must be a JSON object", ErrInvalidPatch)
	}
	for k, v := range keys {
		nullable, ok := known[k]
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, section, k)
		}
		if !nullable && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("%w: %s.%s cannot be null", ErrInvalidPatch, section, k)
		}
	}

	target := r.sectionPtr(section)

	// decode into a deep copy so shared slice backing arrays are never touched
	current, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("marshal section %s: %w", section, err)
	}
	clone := reflect.New(reflect.TypeOf(target).Elem())
	if err := json.Unmarshal(current, clone.Interface()); err != nil {
		return fmt.Errorf("copy section %s: %w", section, err)
	}
	if err := json.NewDecoder(bytes.NewReader(partial)).Decode(clone.Interface()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	reflect.ValueOf(target).Elem().Set(clone.Elem())
	r.normalize(section)
	return nil
}

// MergeFields is Merge for callers holding a Go map instead of raw JSON.
func (r *ProjectRecord) MergeFields(section Section, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return r.Merge(section, raw)
}

// SectionValue returns a copy of one section.
func (r *ProjectRecord) SectionValue(section Section) (any, error) {
	if _, ok := sectionFields[section]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return reflect.ValueOf(r.sectionPtr(section)).Elem().Interface(), nil
}

func (r *ProjectRecord) sectionPtr(section Section) any {
	switch section {
	case SectionProjectInfo:
		return &r.ProjectInfo
	case SectionProperty:
		return &r.Property
	case SectionCompliance:
		return &r.Compliance
	case SectionTokenAllocation:
		return &r.TokenAllocation
	case SectionDistribution:
		return &r.Distribution
	case SectionJurisdiction:
		return &r.Jurisdiction
	}
	return nil
}

func (r *ProjectRecord) normalize(section Section) {
	switch section {
	case SectionCompliance:
		r.Compliance.BlockedCountries = normalizeSet(r.Compliance.BlockedCountries, strings.ToUpper)
	case SectionDistribution:
		r.Distribution.MarketingChannels = normalizeSet(r.Distribution.MarketingChannels, nil)
	case SectionProperty:
		if r.Property.GalleryURLs == nil {
			r.Property.GalleryURLs = []string{}
		}
	}
}

func jsonFields(v any) map[string]bool {
	t := reflect.TypeOf(v)
	out := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		switch t.Field(i).Type.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map:
			out[name] = true
		default:
			out[name] = false
		}
	}
	return out
}
