package extract

import (
	"regexp"
	"slices"
	"strings"
)

const (
	sentinelOpen  = "<<<"
	sentinelClose = ">>>"
	endPrefix     = "END_"
)

// DefaultMarkers matches <<<ANALYSIS_JSON>>> and every versioned or
// prefixed variant of it, e.g. <<<DISCERNUS_ANALYSIS_JSON_v6>>>.
var DefaultMarkers = Markers{Name: "ANALYSIS_JSON"}

// Markers describes one sentinel convention. The start sentinel is
// <<<[PREFIX_]NAME[_vVERSION]>>> and its end sentinel repeats the exact label
// after END_, as in <<<END_NAME_vVERSION>>>.
//
// An empty Version accepts any numeric version suffix, or none. A set
// Version makes the suffix mandatory.
type Markers struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// Label is the canonical sentinel label, e.g. "ANALYSIS_JSON_v6".
func (m Markers) Label() string {
	if v := m.version(); v != "" {
		return m.Name + "_v" + v
	}
	return m.Name
}

// Start returns the canonical start sentinel.
func (m Markers) Start() string {
	return sentinelOpen + m.Label() + sentinelClose
}

// End returns the canonical end sentinel.
func (m Markers) End() string {
	return sentinelOpen + endPrefix + m.Label() + sentinelClose
}

// Wrap encloses payload in the canonical sentinels, one per line.
func (m Markers) Wrap(payload string) string {
	return m.Start() + "\n" + payload + "\n" + m.End()
}

func (m Markers) String() string {
	if m.version() == "" {
		return m.Name + " (any version)"
	}
	return m.Label()
}

func (m Markers) version() string {
	v := strings.TrimSpace(m.Version)
	v = strings.TrimPrefix(v, "_")
	return strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
}

// pattern matches start sentinels and captures the full label. End
// sentinels also match (with an END_ prefix) and are filtered by the caller.
func (m Markers) pattern() *regexp.Regexp {
	suffix := `(?:_v\d+)?`
	if v := m.version(); v != "" {
		suffix = `_v` + regexp.QuoteMeta(v)
	}
	return regexp.MustCompile(regexp.QuoteMeta(sentinelOpen) +
		`((?:[A-Z0-9]+_)*` + regexp.QuoteMeta(m.Name) + suffix + `)` +
		regexp.QuoteMeta(sentinelClose))
}

type sentinel struct {
	start, end int
	label      string
}

// markedBlock returns the content of the first complete marker pair. A
// start sentinel pairs with an end sentinel carrying its exact label. Since
// the payload may quote sentinels, each start first tries its end sentinels
// in order and takes the first whose content parses as strict JSON. Failing
// that, the start pairs with its nearest end unless another start sentinel
// comes first; such interrupted pairs are only used when nothing else
// matches. sawStart reports whether any start sentinel occurred.
func markedBlock(raw string, patterns []*regexp.Regexp) (content string, found, sawStart bool) {
	var starts []sentinel
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(raw, -1) {
			label := raw[loc[2]:loc[3]]
			if strings.HasPrefix(label, endPrefix) {
				continue
			}
			starts = append(starts, sentinel{start: loc[0], end: loc[1], label: label})
		}
	}
	if len(starts) == 0 {
		return "", false, false
	}

	// Several conventions can match the same sentinel.
	slices.SortFunc(starts, func(a, b sentinel) int { return a.start - b.start })
	starts = slices.CompactFunc(starts, func(a, b sentinel) bool { return a.start == b.start })

	var interrupted []string
	for i, s := range starts {
		endTag := sentinelOpen + endPrefix + s.label + sentinelClose
		nearest := -1
		for from := s.end; ; {
			j := strings.Index(raw[from:], endTag)
			if j < 0 {
				break
			}
			end := from + j
			if nearest < 0 {
				nearest = end
			}
			if _, err := decodeStrict(stripFence(strings.TrimSpace(raw[s.end:end]))); err == nil {
				return raw[s.end:end], true, true
			}
			from = end + len(endTag)
		}
		switch {
		case nearest < 0:
		case i+1 < len(starts) && starts[i+1].start < nearest:
			interrupted = append(interrupted, raw[s.end:nearest])
		default:
			return raw[s.end:nearest], true, true
		}
	}
	if len(interrupted) > 0 {
		return interrupted[0], true, true
	}
	return "", false, true
}
