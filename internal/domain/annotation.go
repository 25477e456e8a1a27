package domain

// Lifecycle annotation protocol constants.
const (
	LifecycleArtifactType = "application/vnd.microsoft.artifact.lifecycle"
	LifecycleEOLDateKey   = "vnd.microsoft.artifact.lifecycle.end-of-life.date"
)

// AnnotationOutcome is the result of processing one digest.
type AnnotationOutcome string

const (
	OutcomeAnnotated        AnnotationOutcome = "annotated"
	OutcomeAlreadyAnnotated AnnotationOutcome = "already-annotated"
	OutcomeFailed           AnnotationOutcome = "failed"
)

// DigestResult records what happened to a digest during a dispatch run.
type DigestResult struct {
	Digest  string
	EolDate Date
	Outcome AnnotationOutcome
	Error   string
}

// RegistryCredentials holds the login for a registry.
type RegistryCredentials struct {
	Username string
	Password string
}

// HostPlatform describes the OS and architecture of the executing host.
type HostPlatform struct {
	OS           string
	Architecture string
}
