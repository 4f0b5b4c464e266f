package library

import "github.com/yhkl-dev/lofi/domain"

// Source hands out tracks to play, forever.
// Next never fails; a source with zero tracks cannot be constructed.
// Len counts distinct locators.
type Source interface {
	Next() domain.TrackRef
	Len() int
}
