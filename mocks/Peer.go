// Hand-written testify mock, following the shape mockery generates.

package mocks

import (
	mock "github.com/stretchr/testify/mock"

	memo "github.com/tymebox/tymebox/memo"
)

// Peer is a mock type for the memo.Peer interface, plus the
// Open/Reopen/Close methods of peer.Peer
type Peer struct {
	mock.Mock
}

var _ memo.Peer = (*Peer)(nil)

// Open provides a mock function with given fields:
func (_m *Peer) Open() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Reopen provides a mock function with given fields:
func (_m *Peer) Reopen() error {
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
func (_m *Peer) Close() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Send provides a mock function with given fields: data, dst
func (_m *Peer) Send(data []byte, dst string) (int, error) {
	ret := _m.Called(data, dst)

	var r0 int
	if rf, ok := ret.Get(0).(func([]byte, string) int); ok {
		r0 = rf(data, dst)
	} else {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func([]byte, string) error); ok {
		r1 = rf(data, dst)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Receive provides a mock function with given fields:
func (_m *Peer) Receive() ([]byte, string, error) {
	ret := _m.Called()

	var r0 []byte
	if rf, ok := ret.Get(0).(func() []byte); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	var r1 string
	if rf, ok := ret.Get(1).(func() string); ok {
		r1 = rf()
	} else {
		r1 = ret.Get(1).(string)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func() error); ok {
		r2 = rf()
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}
