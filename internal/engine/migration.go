package engine

import "fmt"

// Migrate copies the full state from one backing medium to another.
// This works for:
// - file -> sqlite (moving to the safer backend)
// - sqlite -> file (exporting a portable JSON dump)
func Migrate(src Persister, dst Persister) error {
	state, err := src.Load()
	if err != nil {
		return fmt.Errorf("load source state: %w", err)
	}
	if err := dst.Save(state); err != nil {
		return fmt.Errorf("write destination state: %w", err)
	}
	return nil
}
