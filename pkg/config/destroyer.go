package config

import (
	"github.com/tauraamui/camdoubler/internal/config"
	"github.com/tauraamui/camdoubler/pkg/configdef"
)

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}
