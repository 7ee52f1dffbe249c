package config

import "github.com/tauraamui/camdoubler/pkg/configdef"

type defaultSettingKey uint

const (
	BACKEND          defaultSettingKey = 0x0
	WIDTH            defaultSettingKey = 0x1
	HEIGHT           defaultSettingKey = 0x2
	PREFERFPS        defaultSettingKey = 0x3
	MID              defaultSettingKey = 0x4
	OUTPUTCODEC      defaultSettingKey = 0x5
	HISTORY          defaultSettingKey = 0x6
	DUESLACKMS       defaultSettingKey = 0x7
	STALEHORIZONMS   defaultSettingKey = 0x8
	STALEMIDPOLICY   defaultSettingKey = 0x9
	OUTPUTADDRESS    defaultSettingKey = 0xA
	PRESENTATIONDLMS defaultSettingKey = 0xB
)

var defaultSettings = map[defaultSettingKey]interface{}{
	BACKEND:          configdef.BackendOpenCV,
	WIDTH:            1280,
	HEIGHT:           720,
	PREFERFPS:        30,
	MID:              "duplicate",
	OUTPUTCODEC:      "MJPG",
	OUTPUTADDRESS:    "",
	HISTORY:          30,
	DUESLACKMS:       3,
	STALEHORIZONMS:   4,
	STALEMIDPOLICY:   configdef.StaleMidPolicyHead,
	PRESENTATIONDLMS: 0,
}

func defaultValues() configdef.Values {
	values := configdef.Values{}
	loadDefaults(&values)
	return values
}

// loadDefaults fills every unset field, zero values count as unset.
func loadDefaults(values *configdef.Values) {
	setString(&values.Backend, BACKEND)
	setInt(&values.Width, WIDTH)
	setInt(&values.Height, HEIGHT)
	setInt(&values.PreferFPS, PREFERFPS)
	setString(&values.Mid, MID)
	setString(&values.Output.Codec, OUTPUTCODEC)
	setString(&values.Output.Address, OUTPUTADDRESS)
	setInt(&values.Scheduler.History, HISTORY)
	setInt(&values.Scheduler.DueSlackMS, DUESLACKMS)
	setInt(&values.Scheduler.StaleHorizonMS, STALEHORIZONMS)
	setString(&values.Scheduler.StaleMidPolicy, STALEMIDPOLICY)
	setInt(&values.Scheduler.PresentationDelayMS, PRESENTATIONDLMS)
}

func setString(field *string, key defaultSettingKey) {
	if len(*field) == 0 {
		*field = defaultSettings[key].(string)
	}
}

func setInt(field *int, key defaultSettingKey) {
	if *field == 0 {
		*field = defaultSettings[key].(int)
	}
}
