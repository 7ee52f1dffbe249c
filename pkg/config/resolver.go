package config

import (
	"github.com/tauraamui/camdoubler/internal/config"
	"github.com/tauraamui/camdoubler/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultResolver()
}

// OverridingResolver resolves values from the wrapped resolver and then
// applies any command line flags found in args.
func OverridingResolver(r configdef.Resolver, args []string) Resolver {
	return overridingResolver{r: r, args: args}
}

type overridingResolver struct {
	r    configdef.Resolver
	args []string
}

func (o overridingResolver) Resolve() (configdef.Values, error) {
	values, err := o.r.Resolve()
	if err != nil {
		return configdef.Values{}, err
	}
	return ApplyFlags(values, o.args)
}
