package env

import (
	"flag"
	"os"
	"strings"
	"sync"
)

const (
	Production  = "production"
	Staging     = "staging"
	Development = "development"
	Test        = "test"
)

var (
	// checked in order, first non empty value wins
	envVarNames = []string{"HANAMI_ENV", "APP_ENV"}

	currentENV = ""
	lock       sync.RWMutex
)

// CurrentENV returns the current environment of the application
func CurrentENV() string {
	lock.RLock()
	if currentENV != "" {
		defer lock.RUnlock()
		return currentENV
	}
	lock.RUnlock()

	lock.Lock()
	defer lock.Unlock()

	if currentENV == "" {
		currentENV = detect()
	}
	return currentENV
}

func detect() string {
	for _, name := range envVarNames {
		if e := os.Getenv(name); e != "" {
			return e
		}
	}

	if strings.HasSuffix(os.Args[0], ".test") {
		return Test
	}

	if strings.Contains(os.Args[0], "/_test/") {
		return Test
	}

	if flag.Lookup("test.v") != nil {
		return Test
	}

	return Development
}

// Set forces the current environment, an empty string resets detection
func Set(name string) {
	lock.Lock()
	defer lock.Unlock()

	currentENV = name
}

// Is checks the current Environment against the current string
func Is(str string) bool {
	return CurrentENV() == str
}

// IsTest returns if current env is test
func IsTest() bool {
	return Is(Test)
}

// IsProduction returns true if we are running in production mode
func IsProduction() bool {
	return Is(Production)
}

// IsDevelopment returns true if current env is development
func IsDevelopment() bool {
	return Is(Development)
}

// IsStaging is staging returns true if current env is staging
func IsStaging() bool {
	return Is(Staging)
}

// IsDevelopmentOrTest returns true if we are development or test mode
// this is good for stubs
func IsDevelopmentOrTest() bool {
	return IsTest() || IsDevelopment()
}
