package judge0

import "codearena/internal/models"

// Provider status ids, per the Judge0 API.
const (
	StatusIDInQueue             = 1
	StatusIDProcessing          = 2
	StatusIDAccepted            = 3
	StatusIDWrongAnswer         = 4
	StatusIDTimeLimitExceeded   = 5
	StatusIDCompilationError    = 6
	StatusIDRuntimeError        = 7
	StatusIDMemoryLimitExceeded = 8
	StatusIDInternalError       = 9
)

var statusMapping = map[int]string{
	StatusIDInQueue:             models.StatusInQueue,
	StatusIDProcessing:          models.StatusProcessing,
	StatusIDAccepted:            models.StatusAccepted,
	StatusIDWrongAnswer:         models.StatusWrongAnswer,
	StatusIDTimeLimitExceeded:   models.StatusTimeLimitExceeded,
	StatusIDCompilationError:    models.StatusCompilationError,
	StatusIDRuntimeError:        models.StatusRuntimeError,
	StatusIDMemoryLimitExceeded: models.StatusMemoryLimitExceeded,
	StatusIDInternalError:       models.StatusInternalError,
}

// MapStatus translates a provider status id to the local submission
// status. Unknown ids map to INTERNAL_ERROR.
func MapStatus(providerID int) string {
	if status, ok := statusMapping[providerID]; ok {
		return status
	}
	return models.StatusInternalError
}
