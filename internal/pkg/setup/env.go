package setup

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the environment before the config is read.
// Already set variables are kept, missing files are ignored
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}
