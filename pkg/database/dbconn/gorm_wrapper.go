package dbconn

import "gorm.io/gorm"

type GormWrapper interface {
	Error() error
	AutoMigrate(...interface{}) error
	Create(interface{}) GormWrapper
	Where(interface{}, ...interface{}) GormWrapper
	Order(interface{}) GormWrapper
	Limit(int) GormWrapper
	First(interface{}, ...interface{}) GormWrapper
	Find(interface{}, ...interface{}) GormWrapper
	Close() error
}

type wrapper struct {
	db *gorm.DB
}

func Wrap(db *gorm.DB) GormWrapper {
	return &wrapper{
		db: db,
	}
}

func (w *wrapper) Error() error {
	return w.db.Error
}

func (w *wrapper) AutoMigrate(dst ...interface{}) error {
	return w.db.AutoMigrate(dst...)
}

func (w *wrapper) Create(value interface{}) GormWrapper {
	return &wrapper{db: w.db.Create(value)}
}

func (w *wrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	return &wrapper{db: w.db.Where(query, args...)}
}

func (w *wrapper) Order(value interface{}) GormWrapper {
	return &wrapper{db: w.db.Order(value)}
}

func (w *wrapper) Limit(limit int) GormWrapper {
	return &wrapper{db: w.db.Limit(limit)}
}

func (w *wrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	return &wrapper{db: w.db.First(dest, conds...)}
}

func (w *wrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	return &wrapper{db: w.db.Find(dest, conds...)}
}

func (w *wrapper) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
