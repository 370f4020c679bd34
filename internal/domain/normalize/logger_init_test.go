package normalize_test

import "github.com/okian/jobscout/pkg/logger"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}
