package domain

import "strings"

// PlatformFilter scopes a catalog to a subset of repos and platforms.
type PlatformFilter struct {
	// Repo keeps only the repo with this exact name when non-blank.
	Repo string
	// Path is a Dockerfile path glob using * and ? wildcards.
	Path string
	// OS and Architecture restrict active platforms to the executing host.
	OS           string
	Architecture string
}

// RestrictsPlatforms reports whether the filter narrows platforms within an image.
func (f PlatformFilter) RestrictsPlatforms() bool {
	return strings.TrimSpace(f.Path) != ""
}

// ReconcileOptions controls an EOL data generation run.
type ReconcileOptions struct {
	// EolDate is the batch default date. Zero means today (UTC).
	EolDate Date
	// Scope narrows the old snapshot. The new snapshot is never filtered.
	Scope PlatformFilter
	// ActiveOnly keeps only platforms matching the scope OS and architecture.
	ActiveOnly bool
}

// ReconcileSummary counts retired digests.
type ReconcileSummary struct {
	Total int
	Repos []RepoRetirement
}

// RepoRetirement counts retired digests of one repo.
type RepoRetirement struct {
	Repo string
	// Removed is true when the whole repo disappeared from the new snapshot.
	Removed  bool
	Digests  int
	Versions []VersionRetirement
}

// VersionRetirement counts retired digests of one product version.
type VersionRetirement struct {
	ProductVersion string
	Digests        int
}

// AnnotateOptions controls a dispatch run.
type AnnotateOptions struct {
	// SkipIdempotencyCheck annotates without first checking for an existing annotation.
	SkipIdempotencyCheck bool
	// DryRun logs mutating calls instead of executing them.
	DryRun bool
	// Registry is the registry to log in to and to qualify bare references with.
	Registry string
}

// AnnotateReport summarizes a dispatch run.
type AnnotateReport struct {
	RunID     string
	Annotated int
	Skipped   int
	Failed    int
	// Rerun holds the failed digests as a batch ready for resubmission.
	Rerun *EolBatch
}
