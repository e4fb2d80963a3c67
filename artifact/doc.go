// Package artifact provides core.ArtifactStore implementations. Case reports
// produced during an agent run are stored here as JSON blobs keyed by session.
package artifact
