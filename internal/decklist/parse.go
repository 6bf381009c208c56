package decklist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ramonehamilton/deckkeeper/internal/deck"
)

// "2 Title", "2x Title" or "Title x2".
var (
	leadingQuantity  = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)
	trailingQuantity = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// Line is one parsed card line.
type Line struct {
	Quantity  int
	Title     string
	Partition deck.Partition
	LineNo    int
}

// Parsed is a parsed deck list.
type Parsed struct {
	Name     string
	Lines    []Line
	Warnings []string
}

// Parse reads a deck list. A "// name" comment names the deck, "Deck" and
// "Stage" headers switch sections, and the first blank line after main deck
// cards switches to the stage section. Unparseable lines become warnings.
func Parse(input string) (*Parsed, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty deck list")
	}

	result := &Parsed{}
	section := deck.PartitionMain
	seenMain := false

	for i, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		switch {
		case line == "":
			if seenMain && section == deck.PartitionMain {
				section = deck.PartitionStage
			}
			continue
		case strings.HasPrefix(line, "//"):
			if result.Name == "" {
				result.Name = strings.TrimSpace(strings.TrimPrefix(line, "//"))
			}
			continue
		case strings.EqualFold(line, headerMain) || strings.EqualFold(line, "Main"):
			section = deck.PartitionMain
			continue
		case strings.EqualFold(line, headerStage):
			section = deck.PartitionStage
			continue
		}

		quantity, title, ok := parseLine(line)
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: could not parse %q", lineNo, line))
			continue
		}
		if quantity <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: invalid quantity %d", lineNo, quantity))
			continue
		}

		result.Lines = append(result.Lines, Line{Quantity: quantity, Title: title, Partition: section, LineNo: lineNo})
		if section == deck.PartitionMain {
			seenMain = true
		}
	}

	if len(result.Lines) == 0 {
		return result, fmt.Errorf("no cards found in deck list")
	}
	return result, nil
}

func parseLine(line string) (int, string, bool) {
	if m := leadingQuantity.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, strings.TrimSpace(m[2]), err == nil
	}
	if m := trailingQuantity.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[2])
		return n, strings.TrimSpace(m[1]), err == nil
	}
	return 0, "", false
}
