package synth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxl/beep/wav"

	"go-songcode/composer"
	"go-songcode/debug"
)

// ExportWAV renders plan to a 16-bit stereo WAV file at path
func (e *Engine) ExportWAV(path string, plan *composer.Plan) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	r := e.Render(plan)
	defer r.Close()

	if err := wav.Encode(f, r, e.Format()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	debug.Log("synth", "exported code %07d to %s (%d frames)", plan.Code, path, r.Position())
	return nil
}
