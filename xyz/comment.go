/*
 * comment.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package xyz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//column is one entry of an extended XYZ Properties specification, like "forces:R:3".
type column struct {
	name  string
	kind  byte // S, R, I or L
	width int
}

var defaultColumns = []column{{"species", 'S', 1}, {"pos", 'R', 3}}

//parseColumns parses the value of the Properties key.
func parseColumns(spec string) ([]column, error) {
	f := strings.Split(spec, ":")
	if len(f)%3 != 0 {
		return nil, fmt.Errorf("Properties=%s: number of fields is not a multiple of 3", spec)
	}
	cols := make([]column, 0, len(f)/3)
	for i := 0; i < len(f); i += 3 {
		kind := strings.ToUpper(f[i+1])
		if len(kind) != 1 || !strings.Contains("SRIL", kind) {
			return nil, fmt.Errorf("Properties=%s: unknown type %q for %s", spec, f[i+1], f[i])
		}
		w, err := strconv.Atoi(f[i+2])
		if err != nil || w < 1 {
			return nil, fmt.Errorf("Properties=%s: bad width %q for %s", spec, f[i+2], f[i])
		}
		cols = append(cols, column{f[i], kind[0], w})
	}
	return cols, nil
}

func formatColumns(cols []column) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%s:%c:%d", c.name, c.kind, c.width))
	}
	return strings.Join(parts, ":")
}

//field is a value of an extended XYZ comment line, and whether it was quoted.
type field struct {
	text   string
	quoted bool
}

//splitComment tokenizes an extended XYZ comment line into key/value pairs. Values can be
//double-quoted to contain spaces. Within quotes, \" \\ \n and \r are unescaped.
//A key without a value gets the value "T". keys keeps the order in which the keys appeared.
func splitComment(line string) (kv map[string]field, keys []string, err error) {
	kv = make(map[string]field)
	s := strings.TrimSpace(line)
	for len(s) > 0 {
		end := strings.IndexAny(s, "= \t")
		if end < 0 {
			end = len(s)
		}
		key := s[:end]
		s = s[end:]
		s = strings.TrimLeft(s, " \t")
		if !strings.HasPrefix(s, "=") {
			kv[key] = field{text: "T"}
			keys = append(keys, key)
			continue
		}
		s = strings.TrimLeft(s[1:], " \t")
		var val field
		if strings.HasPrefix(s, `"`) {
			var rest string
			if val.text, rest, err = unquote(s); err != nil {
				return nil, nil, fmt.Errorf("%s in value of %s", err, key)
			}
			val.quoted = true
			s = rest
		} else {
			end := strings.IndexAny(s, " \t")
			if end < 0 {
				end = len(s)
			}
			val.text = s[:end]
			s = s[end:]
		}
		if key == "" {
			return nil, nil, fmt.Errorf("value %q without a key", val.text)
		}
		kv[key] = val
		keys = append(keys, key)
		s = strings.TrimLeft(s, " \t")
	}
	return kv, keys, nil
}

//unquote reads the quoted value at the start of s and returns it along with the rest of s.
func unquote(s string) (string, string, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			return b.String(), s[i+1:], nil
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case '"', '\\':
				b.WriteByte(s[i])
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated quote")
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

//isExtended tells whether a comment line uses the key=value convention.
func isExtended(line string) bool {
	return strings.Contains(line, "=")
}

//parseBool parses the logical values found in extended XYZ files.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "t", "true":
		return true, true
	case "f", "false":
		return false, true
	}
	return false, false
}

//parseValue converts an Info value to an int, a float64, a bool, a []float64 or leaves
//it as a string, in that order of preference. A quoted value with a single token
//is always a string.
func parseValue(val field) any {
	s := val.text
	fields := strings.Fields(s)
	if val.quoted && len(fields) < 2 {
		return s
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, ok := parseBool(s); ok {
		return b
	}
	if len(fields) > 1 {
		v := make([]float64, len(fields))
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return s
			}
			v[i] = x
		}
		return v
	}
	return s
}

//formatValue is the inverse of parseValue. It fails for strings that would be read
//back as something else.
func formatValue(v any) (string, error) {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case bool:
		if t {
			return "T", nil
		}
		return "F", nil
	case []float64:
		s := make([]string, len(t))
		for i, f := range t {
			s[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return `"` + strings.Join(s, " ") + `"`, nil
	case string:
		if _, ok := parseValue(field{text: t}).(string); ok && t != "" && !strings.ContainsAny(t, " \t=\"\n\r") {
			return t, nil
		}
		if _, ok := parseValue(field{text: t, quoted: true}).(string); !ok {
			return "", fmt.Errorf("string %q would be read back as numbers", t)
		}
		return `"` + quoter.Replace(t) + `"`, nil
	}
	return formatValue(fmt.Sprint(v))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
