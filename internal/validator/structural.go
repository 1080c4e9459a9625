package validator

import (
	"fmt"
	"strings"
)

// StructuralValidator parses Cisco IOS configs into their indentation
// hierarchy and checks interface blocks. Other operating systems fall back to
// keyword validation.
type StructuralValidator struct{}

func (StructuralValidator) Validate(deviceType, configText string) Result {
	if deviceType != "cisco_ios" {
		return KeywordValidator{}.Validate(deviceType, configText)
	}

	var errs []string
	blocks := parseBlocks(configText)

	ipOwner := make(map[string]string)
	for _, b := range blocks {
		if !strings.HasPrefix(b.text, "interface ") {
			continue
		}
		name := strings.TrimSpace(b.text)
		if !b.hasChild(func(child string) bool { return strings.HasPrefix(child, "description ") }) {
			errs = append(errs, fmt.Sprintf("Interface '%s' missing description", name))
		}
		for _, child := range b.children {
			parts := strings.Fields(child)
			if len(parts) < 3 || parts[0] != "ip" || parts[1] != "address" {
				continue
			}
			ip := parts[2]
			if first, seen := ipOwner[ip]; seen {
				errs = append(errs, fmt.Sprintf("Duplicate IP %s on %s (also on %s)", ip, name, first))
				continue
			}
			ipOwner[ip] = name
		}
	}

	var actions []string
	for _, raw := range strings.Split(configText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		actions = append(actions, dryRunAction(line))
	}
	return finish(errs, actions)
}

// block is a parent line with every more-indented line that follows it.
// Children are stored stripped.
type block struct {
	text     string
	indent   int
	children []string
}

func (b block) hasChild(match func(string) bool) bool {
	for _, c := range b.children {
		if match(c) {
			return true
		}
	}
	return false
}

// parseBlocks returns one block per line. A line's children are all following
// lines indented deeper than it, up to the next line at its own depth or less.
func parseBlocks(configText string) []block {
	type line struct {
		text   string
		indent int
	}
	var lines []line
	for _, raw := range strings.Split(strings.ReplaceAll(configText, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "!") {
			continue
		}
		lines = append(lines, line{text: strings.TrimRight(raw, " \t"), indent: indentOf(raw)})
	}

	blocks := make([]block, 0, len(lines))
	for i, l := range lines {
		b := block{text: l.text, indent: l.indent}
		for _, next := range lines[i+1:] {
			if next.indent <= l.indent {
				break
			}
			b.children = append(b.children, strings.TrimSpace(next.text))
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func indentOf(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
