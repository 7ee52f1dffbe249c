package config_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tauraamui/camdoubler/pkg/config"
	"github.com/tauraamui/camdoubler/pkg/configdef"
)

type testConfigResolver struct {
	values configdef.Values
	err    error
}

func (t testConfigResolver) Resolve() (configdef.Values, error) {
	return t.values, t.err
}

var _ = Describe("Config", func() {
	var fileValues configdef.Values

	BeforeEach(func() {
		fileValues = configdef.Values{
			Backend:   "opencv",
			Device:    "0",
			Width:     1280,
			Height:    720,
			PreferFPS: 30,
			Mid:       "duplicate",
			Output:    configdef.Output{Codec: "MJPG"},
			Scheduler: configdef.Scheduler{
				History: 30, DueSlackMS: 3, StaleHorizonMS: 4, StaleMidPolicy: "head",
			},
		}
	})

	Describe("Applying command line flags", func() {
		It("Should keep file values when no flags are given", func() {
			values, err := config.ApplyFlags(fileValues, nil)
			Expect(err).To(BeNil())
			Expect(values).To(Equal(fileValues))
		})

		It("Should override only the given flags", func() {
			values, err := config.ApplyFlags(fileValues, []string{
				"-device", "/dev/video2", "-width", "640", "-height", "480",
				"-prefer_fps", "25", "-mid", "blend", "-preview", "-output", "out.avi", "-backend", "mock",
			})
			Expect(err).To(BeNil())
			Expect(values.Device).To(Equal("/dev/video2"))
			Expect(values.Width).To(Equal(640))
			Expect(values.Height).To(Equal(480))
			Expect(values.PreferFPS).To(Equal(25))
			Expect(values.Mid).To(Equal("blend"))
			Expect(values.Preview).To(BeTrue())
			Expect(values.Output.Address).To(Equal("out.avi"))
			Expect(values.Output.Codec).To(Equal("MJPG"))
			Expect(values.Backend).To(Equal("mock"))
			Expect(values.Scheduler).To(Equal(fileValues.Scheduler))
		})

		It("Should reject unknown flags", func() {
			_, err := config.ApplyFlags(fileValues, []string{"-fps", "60"})
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("unable to parse command line flags"))
		})

		It("Should reject overrides which fail validation", func() {
			_, err := config.ApplyFlags(fileValues, []string{"-mid", "optical-flow"})
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("Overriding resolver", func() {
		It("Should apply flags on top of resolved values", func() {
			values, err := config.OverridingResolver(
				testConfigResolver{values: fileValues}, []string{"-width", "320", "-height", "180"},
			).Resolve()
			Expect(err).To(BeNil())
			Expect(values.Width).To(Equal(320))
			Expect(values.Height).To(Equal(180))
		})

		It("Should return resolution errors untouched", func() {
			resolveErr := errors.New("test resolve error")
			_, err := config.OverridingResolver(testConfigResolver{err: resolveErr}, nil).Resolve()
			Expect(err).To(MatchError(resolveErr))
		})
	})

	Describe("Default create resolver", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = ioutil.TempDir("", "camdoubler-config")
			Expect(err).To(BeNil())
			os.Setenv("CAMDOUBLER_CONFIG", filepath.Join(dir, "config.json"))
		})

		AfterEach(func() {
			os.Unsetenv("CAMDOUBLER_CONFIG")
			Expect(os.RemoveAll(dir)).To(BeNil())
		})

		It("Should create, load and destroy the default config", func() {
			cr := config.DefaultCreateResolver()
			Expect(cr.Create()).To(BeNil())

			values, err := cr.Resolve()
			Expect(err).To(BeNil())
			Expect(values.Width).To(Equal(1280))
			Expect(values.Height).To(Equal(720))
			Expect(values.PreferFPS).To(Equal(30))
			Expect(values.Output.Codec).To(Equal("MJPG"))

			err = config.DefaultCreator().Create()
			Expect(errors.Is(err, configdef.ErrConfigAlreadyExists)).To(BeTrue())

			Expect(config.DefaultDestroyer().Destroy()).To(BeNil())
			_, err = config.DefaultResolver().Resolve()
			Expect(err).ToNot(BeNil())
		})
	})
})
