package config

import "github.com/tauraamui/camdoubler/pkg/configdef"

func DefaultDestroyer() configdef.Destroyer {
	return defaultDestroyer{}
}

type defaultDestroyer struct{}

func (d defaultDestroyer) Destroy() error {
	return destroy()
}
