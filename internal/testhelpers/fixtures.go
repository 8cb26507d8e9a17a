package testhelpers

import (
	"os"
	"path/filepath"
	"runtime"
)

// LoadFixture reads a file from internal/testhelpers/fixtures regardless of
// which package's tests ask for it.
func LoadFixture(name string) ([]byte, error) {
	_, file, _, _ := runtime.Caller(0)
	return os.ReadFile(filepath.Join(filepath.Dir(file), "fixtures", name))
}

// MustLoadFixture is LoadFixture for test setup code.
func MustLoadFixture(name string) []byte {
	b, err := LoadFixture(name)
	if err != nil {
		panic(err)
	}
	return b
}
