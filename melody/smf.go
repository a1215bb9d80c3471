package melody

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// LoadSMF reads a monophonic reference melody from a Standard MIDI File.
// The first meter and tempo events found set the time signature and BPM
// (defaulting to 4/4 at 120); note durations are converted from ticks to
// the signature's beat unit.
func LoadSMF(path string) (mel Melody, err error) {
	// the smf reader panics on some malformed files
	defer func() {
		if r, ok := recover().(string); ok {
			err = errors.New(r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return Melody{}, fmt.Errorf("reading midi file: %w", err)
	}

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return Melody{}, fmt.Errorf("parsing midi file: %w", err)
	}

	return fromSMF(s)
}

type noteEvent struct {
	tick int64
	key  uint8
	on   bool
}

func fromSMF(s *smf.SMF) (Melody, error) {
	metric, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return Melody{}, fmt.Errorf("unsupported SMF time format %v", s.TimeFormat)
	}
	ticksPerQuarter := float64(metric.Resolution())
	if ticksPerQuarter <= 0 {
		return Melody{}, fmt.Errorf("invalid SMF resolution %v", metric.Resolution())
	}

	mel := Melody{
		Signature: TimeSignature{Beats: 4, Unit: 4},
		BPM:       120,
	}
	sigSet, tempoSet := false, false

	var events []noteEvent
	for _, track := range s.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)

			var channel, key, velocity uint8
			var num, denom uint8
			var bpm float64
			switch {
			case ev.Message.GetNoteOn(&channel, &key, &velocity):
				// running-status note-off
				events = append(events, noteEvent{tick: abs, key: key, on: velocity > 0})
			case ev.Message.GetNoteOff(&channel, &key, &velocity):
				events = append(events, noteEvent{tick: abs, key: key, on: false})
			case ev.Message.GetMetaMeter(&num, &denom):
				if !sigSet && num > 0 && denom > 0 {
					mel.Signature = TimeSignature{Beats: int(num), Unit: int(denom)}
					sigSet = true
				}
			case ev.Message.GetMetaTempo(&bpm):
				if !tempoSet && bpm > 0 {
					mel.BPM = bpm
					tempoSet = true
				}
			}
		}
	}

	// note-offs first at equal ticks, so back-to-back notes pair correctly
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	unitsPerQuarter := float64(mel.Signature.Unit) / 4.0
	unitsPerMeasure := float64(mel.Signature.Beats)

	pressed := make(map[uint8]int64)
	for _, ev := range events {
		if ev.on {
			pressed[ev.key] = ev.tick
			continue
		}

		start, held := pressed[ev.key]
		if !held {
			continue
		}
		delete(pressed, ev.key)

		startUnits := float64(start) / ticksPerQuarter * unitsPerQuarter
		durUnits := float64(ev.tick-start) / ticksPerQuarter * unitsPerQuarter
		if durUnits <= 0 {
			continue
		}

		mel.Notes = append(mel.Notes, Note{
			Midi:    int(ev.key),
			Beats:   durUnits,
			Measure: int(startUnits / unitsPerMeasure),
		})
	}

	if len(mel.Notes) == 0 {
		return Melody{}, errors.New("midi file contains no notes")
	}
	return mel, nil
}
