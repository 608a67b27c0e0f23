// flex_strings.go
//
// Supplier quality management portal data service
// Copyright (c) 2026 SQM Works <oss@sqmworks.dev>
//
// This file is part of supplier-portal.
// supplier-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// supplier-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with supplier-portal.
// If not, see <https://www.gnu.org/licenses/>.

package types

import (
	"encoding/json"
	"strings"
)

// FlexStrings is a string slice that can be unmarshaled from either a JSON
// array or a single comma-separated JSON string. Tag inputs arrive both ways:
// ["welding","fixture"] from API clients, "welding, fixture" from forms.
type FlexStrings []string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	// If it starts with '[', treat it as a normal array
	if data[0] == '[' {
		var slice []string
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = trimStrings(slice)
		return nil
	}

	// Otherwise, split a single string on commas
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = trimStrings(strings.Split(s, ","))
	return nil
}

// Slice converts FlexStrings back to a plain []string.
func (f FlexStrings) Slice() []string {
	return []string(f)
}

func trimStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
