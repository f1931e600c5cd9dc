package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GHARBETI_TEST_MODE") == "" {
			_ = os.Setenv("GHARBETI_TEST_MODE", "1")
		}
	})
}
