package utils

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

var sourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)

	sourceDir = regexp.MustCompile(`utils.source\.go`).ReplaceAllString(file, "")
}

// FileWithLineNum return the file name and line number of the first caller
// outside of the framework (tests always count as outside)
func FileWithLineNum() string {
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && ((!strings.HasPrefix(file, sourceDir) && !strings.Contains(file, "gorm.io")) || strings.HasSuffix(file, "_test.go")) {
			return file + ":" + strconv.FormatInt(int64(line), 10)
		}
	}

	return ""
}
