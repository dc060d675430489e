// Package guard switches the commands into test mode when imported from tests, so no
// test starts a server, dials redis or reaches Gotenberg.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("FMS_TEST_MODE") == "" {
			_ = os.Setenv("FMS_TEST_MODE", "1")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}
