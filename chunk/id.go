package chunk

import "github.com/google/uuid"

func newChunkID() string {
	return uuid.New().String()
}
