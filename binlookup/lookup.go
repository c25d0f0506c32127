// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package binlookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// Topic is the service label bin schedule replies are filed under.
const Topic = "Waste & Bins"

var districtPattern = regexp.MustCompile(`\b(BD\d{1,2})\b`)

// Collection is one bin round in a district.
type Collection struct {
	BinType            string `json:"bin_type"`
	CollectionDay      string `json:"collection_day"`
	NextCollectionDate string `json:"next_collection_date"`
}

// Schedule lists the collections for one postcode district.
type Schedule struct {
	PostcodeDistrict string       `json:"postcode_district"`
	AreaName         string       `json:"area_name"`
	Collections      []Collection `json:"collections"`
}

type scheduleFile struct {
	Districts []Schedule `json:"districts"`
}

// Directory looks up schedules by district or area. It is read-only after
// construction and safe for concurrent use.
type Directory struct {
	schedules  []Schedule
	byDistrict map[string]*Schedule
	districts  []string
}

// NewDirectory indexes schedules. Later duplicates of a district are ignored.
func NewDirectory(schedules []Schedule) *Directory {
	d := &Directory{
		schedules:  slices.Clone(schedules),
		byDistrict: make(map[string]*Schedule, len(schedules)),
	}
	for i := range d.schedules {
		key := strings.ToUpper(strings.TrimSpace(d.schedules[i].PostcodeDistrict))
		if key == "" {
			continue
		}
		if _, ok := d.byDistrict[key]; ok {
			continue
		}
		d.byDistrict[key] = &d.schedules[i]
		d.districts = append(d.districts, key)
	}
	slices.Sort(d.districts)
	return d
}

// Load reads the schedule file at path. A missing or empty file yields an
// empty directory.
func Load(fsys afero.Fs, path string) (*Directory, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDirectory(nil), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return Parse(data)
}

// Parse decodes a schedule file.
func Parse(data []byte) (*Directory, error) {
	var file scheduleFile
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	return NewDirectory(file.Districts), nil
}

// ExtractDistrict returns the first BD district named in text, upper-cased,
// or "". Full postcodes such as "bd7 1ab" yield their district.
func ExtractDistrict(text string) string {
	m := districtPattern.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return ""
	}
	return m[1]
}

// Len returns the number of distinct districts.
func (d *Directory) Len() int {
	return len(d.districts)
}

// Districts returns the supported districts in sorted order.
func (d *Directory) Districts() []string {
	return slices.Clone(d.districts)
}

// ByDistrict returns the schedule for district, ignoring case.
func (d *Directory) ByDistrict(district string) (Schedule, bool) {
	s, ok := d.byDistrict[strings.ToUpper(strings.TrimSpace(district))]
	if !ok {
		return Schedule{}, false
	}
	return *s, true
}

// ByArea returns the first schedule whose area name equals, contains or is
// contained in query, after folding case and whitespace.
func (d *Directory) ByArea(query string) (Schedule, bool) {
	q := normalize(query)
	if q == "" {
		return Schedule{}, false
	}
	for _, s := range d.schedules {
		area := normalize(s.AreaName)
		if area == "" {
			continue
		}
		if q == area || strings.Contains(area, q) || strings.Contains(q, area) {
			return s, true
		}
	}
	return Schedule{}, false
}

// Answer resolves message to a reply.
//
// A named district answers with its schedule. When inTopic is set the
// message is already about bins, so an unknown district gets the list of
// supported districts and a message without a district is matched against
// area names. ok is false when the message should go to ordinary retrieval.
func (d *Directory) Answer(message string, inTopic bool) (reply string, ok bool) {
	if district := ExtractDistrict(message); district != "" {
		if s, found := d.ByDistrict(district); found {
			return Format(s), true
		}
		if inTopic {
			return d.Fallback(), true
		}
		return "", false
	}
	if !inTopic {
		return "", false
	}
	if s, found := d.ByArea(message); found {
		return Format(s), true
	}
	return "", false
}

// Format renders a schedule as a reply.
func Format(s Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bin collection info for %s:\n", s.AreaName)
	for _, c := range s.Collections {
		fmt.Fprintf(&b, "\n%s - %s (Next: %s)", c.BinType, c.CollectionDay, c.NextCollectionDate)
	}
	return b.String()
}

// Fallback is the reply for a district with no schedule.
func (d *Directory) Fallback() string {
	supported := "none yet"
	if len(d.districts) > 0 {
		supported = strings.Join(d.districts, ", ")
	}
	return "Sorry, I couldn't find bin collection info for that. " +
		"I currently support these postcode districts: " + supported + ". " +
		"You can also type your area name (e.g., 'Little Horton')."
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
