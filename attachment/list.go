// Package attachment keeps the list of files attached to a note and
// validates new files before they are handed to an Uploader.
package attachment

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// List is the attachment reference of a note: file URLs in insertion order.
// Duplicates are allowed.
type List []string

// Decode reads the stored attachment value of a note. The value is either
// nil, a single URL, or a JSON array of URLs. Blank entries are skipped.
func Decode(raw *string) List {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	if !gjson.Valid(s) {
		return List{s}
	}

	res := gjson.Parse(s)
	switch {
	case res.IsArray():
		var list List
		res.ForEach(func(_, v gjson.Result) bool {
			if v.Type != gjson.String {
				return true
			}
			if url := strings.TrimSpace(v.String()); url != "" {
				list = append(list, url)
			}
			return true
		})
		return list
	case res.Type == gjson.Null:
		return nil
	case res.Type == gjson.String:
		if url := strings.TrimSpace(res.String()); url != "" {
			return List{url}
		}
		return nil
	}
	return List{s}
}

// Encode returns the stored form of the list: nil when it is empty, a JSON
// array otherwise.
func Encode(list List) (*string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := "[]"
	for i, url := range list {
		var err error
		if out, err = sjson.Set(out, "-1", url); err != nil {
			return nil, errors.Wrapf(err, "failed to encode attachment %d", i)
		}
	}
	return &out, nil
}

// Contains tells whether url is in the list.
func (l List) Contains(url string) bool {
	for _, u := range l {
		if u == url {
			return true
		}
	}
	return false
}
