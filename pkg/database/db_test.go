package data_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	data "github.com/tauraamui/camdoubler/pkg/database"
	"github.com/tauraamui/camdoubler/pkg/database/dbconn"
	"github.com/tauraamui/camdoubler/pkg/database/models"
)

var _ = Describe("Data", func() {
	Context("Setup run against blank file system", func() {
		var (
			memFS     afero.Fs
			mockDB    dbconn.MockGormWrapper
			resetFS   func()
			resetUC   func()
			resetOpen func()
		)

		BeforeEach(func() {
			memFS = afero.NewMemMapFs()
			mockDB = dbconn.Mock()
			resetFS = data.OverloadFS(memFS)
			resetUC = data.OverloadUC(func() (string, error) { return "/testcache", nil })
			resetOpen = data.OverloadOpenDBConnection(func(string) (dbconn.GormWrapper, error) {
				return mockDB, nil
			})
		})

		AfterEach(func() {
			resetOpen()
			resetUC()
			resetFS()
		})

		It("Should create full file path for DB and migrate", func() {
			Expect(data.Setup()).To(BeNil())

			_, err := memFS.Stat("/testcache/tacusci/camdoubler/cd.db")
			Expect(err).To(BeNil())
			Expect(mockDB.Migrated()).To(HaveLen(1))
			Expect(mockDB.Closed()).To(BeTrue())
		})

		It("Should refuse to setup over an existing DB", func() {
			Expect(data.Setup()).To(BeNil())
			err := data.Setup()
			Expect(errors.Is(err, data.ErrDBAlreadyExists)).To(BeTrue())
		})

		It("Should remove the DB file on destroy", func() {
			Expect(data.Setup()).To(BeNil())
			Expect(data.Destroy()).To(BeNil())
			_, err := memFS.Stat("/testcache/tacusci/camdoubler/cd.db")
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("Should wrap open connection failures", func() {
			resetOpen()
			resetOpen = data.OverloadOpenDBConnection(func(string) (dbconn.GormWrapper, error) {
				return nil, errors.New("disk on fire")
			})
			_, err := data.Connect()
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(Equal("unable to open db connection: disk on fire"))
		})
	})

	It("Should return error from setup due to path resolution failure", func() {
		reset := data.OverloadUC(func() (string, error) {
			return "", errors.New("test cache dir error")
		})
		defer reset()

		err := data.Setup()

		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("unable to resolve cd.db database file location: test cache dir error"))
	})

	Context("Against a real sqlite file", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = ioutil.TempDir("", "camdoubler-db")
			Expect(err).To(BeNil())
			os.Setenv("CAMDOUBLER_DB", filepath.Join(dir, "cd.db"))
		})

		AfterEach(func() {
			os.Unsetenv("CAMDOUBLER_DB")
			Expect(os.RemoveAll(dir)).To(BeNil())
		})

		It("Should persist and list sessions", func() {
			sessions, closeDB, err := data.Sessions()
			Expect(err).To(BeNil())
			defer closeDB() //nolint

			start := time.Date(2021, 3, 17, 13, 0, 0, 0, time.UTC)
			Expect(sessions.Create(&models.Session{Device: "0", StartedAt: start, FramesIn: 30})).To(BeNil())
			Expect(sessions.Create(&models.Session{Device: "1", StartedAt: start.Add(time.Hour), FramesIn: 60})).To(BeNil())

			recent, err := sessions.Recent(10)
			Expect(err).To(BeNil())
			Expect(recent).To(HaveLen(2))
			Expect(recent[0].Device).To(Equal("1"))
			Expect(recent[1].FramesIn).To(Equal(uint64(30)))

			found, err := sessions.FindByUUID(recent[1].UUID)
			Expect(err).To(BeNil())
			Expect(found.Device).To(Equal("0"))
		})
	})
})
