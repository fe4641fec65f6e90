package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var noteOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// NoteToMidi parses a note name such as "A0", "C#4", "Eb3" or "B♭-1" into
// a MIDI note number. C-1 is 0 and A0 is 21.
func NoteToMidi(name string) (int, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}
	base, ok := noteOffsets[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	s = s[1:]

	if r, size := utf8.DecodeRuneInString(s); size > 0 {
		switch r {
		case '#', '♯':
			base++
			s = s[size:]
		case 'b', '♭':
			base--
			s = s[size:]
		}
	}

	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %q", name)
	}
	note := base + (octave+1)*12
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("note %q is outside the MIDI range", name)
	}
	return note, nil
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MidiToNote is the inverse of NoteToMidi, using sharps
func MidiToNote(n int) string {
	if n < 0 || n > 127 {
		return "?"
	}
	return noteNames[n%12] + strconv.Itoa(n/12-1)
}
