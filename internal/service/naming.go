package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dwh-project/clone-governor/internal/platform"
	"github.com/dwh-project/clone-governor/internal/store/model"
)

// Environments form a closed enumeration.
const (
	EnvironmentDev = "DEV"
	EnvironmentTst = "TST"
	EnvironmentAcc = "ACC"
	EnvironmentPrd = "PRD"
)

var validEnvironments = map[string]bool{
	EnvironmentDev: true,
	EnvironmentTst: true,
	EnvironmentAcc: true,
	EnvironmentPrd: true,
}

// ValidEnvironment reports whether env is a known environment tag.
func ValidEnvironment(env string) bool {
	return validEnvironments[env]
}

// CloneName derives the clone object name. Schema clones are named within
// the source database as <sourceSchema>_CLONE_<sanitizedActor>_<seq>;
// database clones as <sourceDatabase>_CLONE_<sanitizedActor>_<seq>.
// The format is relied on by external tooling and must not change.
func CloneName(sourceName, actor string, sequence int64) string {
	return sourceName + "_CLONE_" + platform.SanitizeIdentifier(actor) + "_" + strconv.FormatInt(sequence, 10)
}

// ReadRoleName derives the delegated read role for a clone.
func ReadRoleName(prefix, target string) string {
	return prefix + "_" + platform.SanitizeIdentifier(target) + "_READ"
}

// WriteRoleName derives the delegated read-write role for a clone.
func WriteRoleName(prefix, target string) string {
	return prefix + "_" + platform.SanitizeIdentifier(target) + "_WRITE"
}

// SourceKey normalizes the clone source to the key sequence numbers are
// scoped to: "<db>" for database clones, "<db>.<schema>" for schema clones.
func SourceKey(kind, sourceDatabase, sourceSchema string) string {
	if kind == model.CloneKindSchema {
		return strings.ToUpper(sourceDatabase) + "." + strings.ToUpper(sourceSchema)
	}
	return strings.ToUpper(sourceDatabase)
}

// QualifiedCloneName returns the fully-qualified name of the cloned object:
// schema clones live inside the source database.
func QualifiedCloneName(kind, sourceDatabase, cloneName string) string {
	if kind == model.CloneKindSchema {
		return fmt.Sprintf("%s.%s", sourceDatabase, cloneName)
	}
	return cloneName
}
