package app

import (
	"fmt"

	"github.com/vk/planforge/internal/backend"
	"github.com/vk/planforge/internal/backend/makefile"
	"github.com/vk/planforge/internal/backend/ninja"
)

// emitterFor maps a backend name to its emitter.
//
// --- Backend registration section ---
func emitterFor(name string) (backend.Emitter, error) {
	switch name {
	case "ninja":
		return ninja.New(), nil
	case "make":
		return makefile.New(), nil
	case "posix-make":
		return makefile.NewPosix(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (available: ninja, make, posix-make)", name)
	}
}
