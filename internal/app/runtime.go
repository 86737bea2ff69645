package app

import "os"

const testModeEnv = "GESTION_TEST_MODE"

// InTestMode reports whether startup side effects should be skipped.
func InTestMode() bool {
	return os.Getenv(testModeEnv) == "1"
}
