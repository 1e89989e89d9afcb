// Hand-written testify mock, following the shape mockery generates.

package mocks

import (
	mock "github.com/stretchr/testify/mock"

	doer "github.com/tymebox/tymebox/doer"
)

// Doer is a mock type for the doer.Doer interface
type Doer struct {
	mock.Mock
}

var _ doer.Doer = (*Doer)(nil)

// Enter provides a mock function with given fields:
func (_m *Doer) Enter() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Recur provides a mock function with given fields: tyme
func (_m *Doer) Recur(tyme float64) (bool, error) {
	ret := _m.Called(tyme)

	var r0 bool
	if rf, ok := ret.Get(0).(func(float64) bool); ok {
		r0 = rf(tyme)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(float64) error); ok {
		r1 = rf(tyme)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Exit provides a mock function with given fields:
func (_m *Doer) Exit() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Close provides a mock function with given fields:
func (_m *Doer) Close() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Abort provides a mock function with given fields: reason
func (_m *Doer) Abort(reason error) error {
	ret := _m.Called(reason)

	var r0 error
	if rf, ok := ret.Get(0).(func(error) error); ok {
		r0 = rf(reason)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Tock provides a mock function with given fields:
func (_m *Doer) Tock() float64 {
	ret := _m.Called()

	var r0 float64
	if rf, ok := ret.Get(0).(func() float64); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(float64)
	}

	return r0
}

// Done provides a mock function with given fields:
func (_m *Doer) Done() bool {
	ret := _m.Called()

	var r0 bool
	if rf, ok := ret.Get(0).(func() bool); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(bool)
	}

	return r0
}
