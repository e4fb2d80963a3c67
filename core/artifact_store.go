package core

// ArtifactStore persists opaque blobs (e.g. generated case reports) scoped by
// session. Implementations must be safe for concurrent use.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
