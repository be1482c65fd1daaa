package util

import (
	"os"
	"strings"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentFlag reports whether name is set to YES, the convention for boolean switches
func EnvironmentFlag(name string) bool {
	return strings.EqualFold(os.Getenv(name), "YES")
}
