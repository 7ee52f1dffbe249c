package config

import (
	"github.com/tauraamui/camdoubler/internal/config"
	"github.com/tauraamui/camdoubler/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}
