package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/camdoubler/pkg/configdef"
)

type LoadConfigTestSuite struct {
	suite.Suite
	configResolver configdef.Resolver
	fs             afero.Fs
	fsRef          afero.Fs
	path           string
	configFile     afero.File
}

func (suite *LoadConfigTestSuite) SetupSuite() {
	logging.CurrentLoggingLevel = logging.SilentLevel
	suite.fs = afero.NewMemMapFs()
	suite.configResolver = DefaultResolver()

	// use in memory FS in implementation for tests
	suite.fsRef = fs
	fs = suite.fs
}

func (suite *LoadConfigTestSuite) TearDownSuite() {
	logging.CurrentLoggingLevel = logging.WarnLevel
	fs = suite.fsRef
}

func (suite *LoadConfigTestSuite) SetupTest() {
	path, err := resolveConfigPath()
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm))
	suite.path = path

	configFile, err := suite.fs.Create(path)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), configFile)

	suite.configFile = configFile

	suite.overwriteTestConfig(
		`{
			"backend": "mock",
			"device": "2",
			"width": 640,
			"height": 480,
			"prefer_fps": 25,
			"mid": "blend",
			"preview": true,
			"output": {"address": "/dev/video10"},
			"scheduler": {"history": 12, "stale_mid_policy": "leading", "presentation_delay_ms": 40},
			"stats": true
		}`,
	)
}

func (suite *LoadConfigTestSuite) overwriteTestConfig(config string) {
	require.NoError(suite.T(), suite.configFile.Truncate(0))
	_, err := suite.configFile.Seek(0, 0)
	require.NoError(suite.T(), err)
	_, err = suite.configFile.WriteString(config)
	assert.NoError(suite.T(), err)
}

func (suite *LoadConfigTestSuite) TearDownTest() {
	require.NoError(suite.T(), suite.configFile.Close())
	suite.fs.Remove(suite.path)
}

func (suite *LoadConfigTestSuite) TestLoadConfig() {
	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), configdef.Values{
		Backend:   "mock",
		Device:    "2",
		Width:     640,
		Height:    480,
		PreferFPS: 25,
		Mid:       "blend",
		Preview:   true,
		Output:    configdef.Output{Address: "/dev/video10", Codec: "MJPG"},
		Scheduler: configdef.Scheduler{
			History:             12,
			DueSlackMS:          3,
			StaleHorizonMS:      4,
			StaleMidPolicy:      "leading",
			PresentationDelayMS: 40,
		},
		Stats: true,
	}, config)
}

func (suite *LoadConfigTestSuite) TestLoadEmptyConfigUsesDefaults() {
	suite.overwriteTestConfig(`{}`)

	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), defaultValues(), config)
	assert.Equal(suite.T(), "opencv", config.Backend)
	assert.Equal(suite.T(), 1280, config.Width)
	assert.Equal(suite.T(), 720, config.Height)
	assert.Equal(suite.T(), 30, config.PreferFPS)
	assert.Equal(suite.T(), "duplicate", config.Mid)
	assert.Equal(suite.T(), "head", config.Scheduler.StaleMidPolicy)
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsOnInvalidJSON() {
	suite.overwriteTestConfig(`{"width" 640}`)

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
	assert.Contains(suite.T(), err.Error(), "parsing configuration error")
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsValidation() {
	suite.overwriteTestConfig(`{"mid": "optical-flow"}`)

	config, err := suite.configResolver.Resolve()
	require.Error(suite.T(), err)
	assert.Empty(suite.T(), config)
}

func (suite *LoadConfigTestSuite) TestLoadConfigFailsCrossFieldValidation() {
	suite.overwriteTestConfig(`{"prefer_fps": 120, "scheduler": {"due_slack_ms": 9}}`)

	_, err := suite.configResolver.Resolve()
	assert.EqualError(suite.T(), err, "validation failed: due slack must be shorter than one input frame interval")
}

func (suite *LoadConfigTestSuite) TestLoadConfigFromEnvPath() {
	os.Setenv(configEnvVar, "/env/camdoubler.json")
	defer os.Unsetenv(configEnvVar)
	require.NoError(suite.T(), afero.WriteFile(suite.fs, "/env/camdoubler.json", []byte(`{"width": 320, "height": 240}`), 0666))

	config, err := suite.configResolver.Resolve()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 320, config.Width)
	assert.Equal(suite.T(), 240, config.Height)
}

func (suite *LoadConfigTestSuite) TestResolveConfigPathFailsWithoutUserConfigDir() {
	userConfigDirRef := userConfigDir
	userConfigDir = func() (string, error) { return "", errors.New("no home") }
	defer func() { userConfigDir = userConfigDirRef }()

	_, err := resolveConfigPath()
	assert.EqualError(suite.T(), err, "unable to resolve config.json location: no home")
}

func TestLoadConfigTestSuite(t *testing.T) {
	suite.Run(t, &LoadConfigTestSuite{})
}
