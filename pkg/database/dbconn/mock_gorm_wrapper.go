package dbconn

import (
	"errors"
	"reflect"
)

type MockGormWrapper interface {
	GormWrapper
	Created() []interface{}
	Migrated() []interface{}
	Chain() *queryChain
	Closed() bool
	SetError(error) MockGormWrapper
	SetResult(interface{}) MockGormWrapper
}

type mockGormWrapper struct {
	error    error
	created  []interface{}
	migrated []interface{}
	chain    *queryChain
	result   interface{}
	closed   bool
}

type queryChain struct {
	Where whereQuery
	Order interface{}
	Limit int
	First firstSelect
	Find  firstSelect
}

type whereQuery struct {
	Query interface{}
	Args  []interface{}
}

type firstSelect struct {
	Conds []interface{}
}

func Mock() MockGormWrapper {
	return &mockGormWrapper{}
}

func (w *mockGormWrapper) Created() []interface{} {
	return w.created
}

func (w *mockGormWrapper) Migrated() []interface{} {
	return w.migrated
}

func (w *mockGormWrapper) Chain() *queryChain {
	return w.chain
}

func (w *mockGormWrapper) Closed() bool {
	return w.closed
}

func (w *mockGormWrapper) SetError(e error) MockGormWrapper {
	w.error = e
	return w
}

func (w *mockGormWrapper) SetResult(r interface{}) MockGormWrapper {
	w.result = r
	return w
}

func (w *mockGormWrapper) Error() error {
	return w.error
}

func (w *mockGormWrapper) AutoMigrate(dst ...interface{}) error {
	if w.error != nil {
		return w.error
	}
	w.migrated = append(w.migrated, dst...)
	return nil
}

func (w *mockGormWrapper) Create(value interface{}) GormWrapper {
	if w.error == nil {
		w.created = append(w.created, value)
	}
	return w
}

func (w *mockGormWrapper) ensureChain() *queryChain {
	if w.chain == nil {
		w.chain = &queryChain{}
	}
	return w.chain
}

func (w *mockGormWrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	w.ensureChain().Where = whereQuery{
		Query: query,
		Args:  args,
	}
	return w
}

func (w *mockGormWrapper) Order(value interface{}) GormWrapper {
	w.ensureChain().Order = value
	return w
}

func (w *mockGormWrapper) Limit(limit int) GormWrapper {
	w.ensureChain().Limit = limit
	return w
}

func (w *mockGormWrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	if w.chain == nil {
		w.error = errors.New("need to call query first")
		return w
	}

	w.chain.First = firstSelect{conds}
	w.fill(dest)
	return w
}

func (w *mockGormWrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	w.ensureChain().Find = firstSelect{conds}
	w.fill(dest)
	return w
}

func (w *mockGormWrapper) fill(dest interface{}) {
	if w.error != nil || w.result == nil {
		return
	}
	w.error = Replace(dest, w.result)
}

func (w *mockGormWrapper) Close() error {
	w.closed = true
	return nil
}

func Replace(i, v interface{}) error {
	val := reflect.ValueOf(i)
	if val.Kind() != reflect.Ptr {
		return errors.New("not a pointer")
	}

	val = val.Elem()

	newVal := reflect.Indirect(reflect.ValueOf(v))

	if !val.Type().AssignableTo(newVal.Type()) {
		return errors.New("mismatched types")
	}

	val.Set(newVal)
	return nil
}
