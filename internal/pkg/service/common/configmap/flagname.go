package configmap

import (
	"strings"

	"github.com/umisama/go-regexpcache"
)

// fieldToFlagName converts the configKey to a flag name, "privateKeyFile" => "private-key-file".
func fieldToFlagName(fieldName string) string {
	str := regexpcache.MustCompile(`[A-Z]+`).ReplaceAllString(fieldName, "-$0")
	str = regexpcache.MustCompile(`[-.\s]+`).ReplaceAllString(str, "-")
	str = strings.Trim(str, "-")
	str = strings.ToLower(str)
	return str
}

// flagToEnv converts the flag name to an ENV name, "private-key-file" => "MY_APP_PRIVATE_KEY_FILE".
func flagToEnv(prefix, flagName string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
