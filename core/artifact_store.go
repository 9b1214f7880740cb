package core

// ArtifactStore persists binary artifacts (cropped avatar images) scoped by
// session identifier. Implementations should be thread-safe.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
