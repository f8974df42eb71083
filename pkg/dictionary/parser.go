// Package dictionary loads completion dictionaries: plain `key=value` files
// where a trailing backslash continues the description onto the next line.
//
// A dictionary lives either on the local filesystem or behind an http(s) URL.
// Both are read through a Source, parsed into Entries and kept in a Cache that
// only re-reads a local file once its modification time changes.
package dictionary

import (
	"io"
	"strings"
)

// Entry is one dictionary key with its (possibly empty) description.
type Entry struct {
	Key         string
	Description string
}

// parser holds the accumulators for the entry being assembled.
type parser struct {
	key     string
	desc    string
	entries []Entry
}

// Parse converts dictionary text into entries, in file order.
//
// Lines starting with '#' and blank lines end the current entry. A line
// `key=value` starts one; the first '=' must not be the first character.
// A value or continuation ending in '\' keeps the entry open and the next
// line is appended to the description with a single space.
// Anything else is dropped silently; Parse never fails.
func Parse(content string) []Entry {
	p := &parser{}
	for _, line := range strings.Split(content, "\n") {
		p.feed(line)
	}
	p.flush()
	return p.entries
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(decodeText(data)), nil
}

func (p *parser) feed(line string) {
	trimmed := strings.TrimSpace(line)
	open := p.key != ""

	switch {
	case strings.HasPrefix(line, "#") || trimmed == "":
		if open {
			p.flush()
		}
	case open:
		p.desc += " "
		p.appendValue(trimmed)
	default:
		sep := strings.Index(line, "=")
		if sep <= 0 {
			return
		}
		p.key = line[:sep]
		p.appendValue(line[sep+1:])
	}
}

// appendValue adds a description fragment and flushes unless it continues.
func (p *parser) appendValue(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if rest, ok := strings.CutSuffix(fragment, `\`); ok {
		p.desc += strings.TrimSpace(rest)
		return
	}
	p.desc += fragment
	p.flush()
}

func (p *parser) flush() {
	if key := strings.TrimSpace(p.key); key != "" {
		p.entries = append(p.entries, Entry{
			Key:         key,
			Description: strings.TrimSpace(p.desc),
		})
	}
	p.key = ""
	p.desc = ""
}
