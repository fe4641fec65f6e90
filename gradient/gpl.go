package gradient

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"piano-leds/color"
)

// LoadGPL reads a GIMP palette file. Only the RGB columns are used; names
// and headers are skipped.
func LoadGPL(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL parses GIMP palette text
func ParseGPL(r io.Reader) (Palette, error) {
	var p Palette
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") ||
			strings.HasPrefix(line, "Name:") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		r, err1 := strconv.Atoi(fields[0])
		g, err2 := strconv.Atoi(fields[1])
		b, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if !inByte(r) || !inByte(g) || !inByte(b) {
			continue
		}
		p = append(p, color.Color{R: uint8(r), G: uint8(g), B: uint8(b)})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p) == 0 {
		return nil, fmt.Errorf("no colors found")
	}

	return p, nil
}

func inByte(v int) bool {
	return v >= 0 && v <= 255
}
