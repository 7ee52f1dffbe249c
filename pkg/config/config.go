package config

import (
	"github.com/tauraamui/camdoubler/internal/config"
	"github.com/tauraamui/camdoubler/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}
