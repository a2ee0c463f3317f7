package netutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":     {nil, false},
		"plain":   {errors.New("telegram: chat not found (400)"), false},
		"timeout": {&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: timeoutErr{}}, true},
		"dial":    {&net.OpError{Op: "dial", Err: errors.New("no route")}, true},
		"read":    {&net.OpError{Op: "read", Err: errors.New("eof")}, false},
		"reset":   {fmt.Errorf("send: %w", syscall.ECONNRESET), true},
		"refused": {&net.OpError{Op: "write", Err: syscall.ECONNREFUSED}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}
