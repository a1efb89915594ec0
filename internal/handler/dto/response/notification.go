package response

import "github.com/google/uuid"

type EnqueuedJobResponse struct {
	JobID uuid.UUID `json:"jobId"`
}

type EnqueuedBulkResponse struct {
	JobIDs []uuid.UUID `json:"jobIds"`
}
