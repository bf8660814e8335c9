package midi

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-songcode/composer"
	"go-songcode/debug"
)

// BuildSMF lays the whole plan out as a single-track standard MIDI file
func BuildSMF(plan *composer.Plan, kit DrumKit) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(PPQ)

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(composer.Digits(plan.Code)))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(float64(plan.Tempo)))

	last := 0
	for _, ev := range PlanEvents(plan, plan.Beats(), kit) {
		tr.Add(uint32(ev.Tick-last), ev.Message())
		last = ev.Tick
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return s, nil
}

// WriteSMF writes plan as a standard MIDI file to w
func WriteSMF(w io.Writer, plan *composer.Plan, kit DrumKit) error {
	s, err := BuildSMF(plan, kit)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// ExportSMF writes plan to a .mid file at path
func ExportSMF(path string, plan *composer.Plan, kit DrumKit) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSMF(f, plan, kit); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	debug.Log("midi", "exported code %s to %s", composer.Digits(plan.Code), path)
	return f.Close()
}
