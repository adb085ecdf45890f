package container

import "github.com/slimloans/hanami/errors"

var (
	ErrorComponentNotFound = errors.Error{Key: "ERROR.COMPONENT_NOT_FOUND"}
	ErrorComponentType     = errors.Error{Key: "ERROR.COMPONENT_TYPE"}
	ErrorDuplicateKey      = errors.Error{Key: "ERROR.DUPLICATE_COMPONENT"}
	ErrorDependencyCycle   = errors.Error{Key: "ERROR.DEPENDENCY_CYCLE"}
	ErrorImportCycle       = errors.Error{Key: "ERROR.IMPORT_CYCLE"}
	ErrorProviderNotFound  = errors.Error{Key: "ERROR.PROVIDER_NOT_FOUND"}
	ErrorProviderFailed    = errors.Error{Key: "ERROR.PROVIDER_FAILED"}
	ErrorStubsDisabled     = errors.Error{Key: "ERROR.STUBS_DISABLED"}
	ErrorInvalidInjection  = errors.Error{Key: "ERROR.INVALID_INJECTION"}
)
