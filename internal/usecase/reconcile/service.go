// Package reconcile implements EOL data generation: the diff of two release
// snapshots into the set of digests that are no longer supported.
package reconcile

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/eolkeeper/internal/domain"
	"github.com/bnema/eolkeeper/internal/usecase/selector"
)

// Service implements the reconcile use case.
type Service struct {
	log *log.Logger
	now func() time.Time
}

// NewService creates a new reconcile service.
func NewService(logger *log.Logger) *Service {
	return &Service{
		log: logger.WithPrefix("reconcile"),
		now: time.Now,
	}
}

// Generate diffs oldInfo against newInfo and returns the digests of oldInfo that must be
// annotated EOL. Neither catalog is modified.
func (s *Service) Generate(ctx context.Context, oldInfo, newInfo *domain.Catalog, opts domain.ReconcileOptions) (*domain.EolBatch, domain.ReconcileSummary, error) {
	if oldInfo == nil || newInfo == nil {
		return nil, domain.ReconcileSummary{}, fmt.Errorf("%w: both old and new image-info are required", domain.ErrMalformedCatalog)
	}
	if err := oldInfo.Validate(); err != nil {
		return nil, domain.ReconcileSummary{}, fmt.Errorf("old image-info: %w", err)
	}
	if err := newInfo.Validate(); err != nil {
		return nil, domain.ReconcileSummary{}, fmt.Errorf("new image-info: %w", err)
	}

	sel, err := selector.New(opts.Scope)
	if err != nil {
		return nil, domain.ReconcileSummary{}, err
	}

	eolDate := opts.EolDate
	if eolDate.IsZero() {
		eolDate = domain.DateOf(s.now())
	}

	run := &run{
		log:     s.log,
		sel:     sel,
		opts:    opts,
		live:    publishedDigests(newInfo),
		retired: domain.NewDigestSet(),
		tally:   newTally(),
	}

	for oldRepo := range sel.Repos(oldInfo) {
		if err := ctx.Err(); err != nil {
			return nil, domain.ReconcileSummary{}, fmt.Errorf("reconcile aborted: %w", err)
		}

		newRepo, ok := newInfo.Repo(oldRepo.Name)
		if !ok {
			s.log.Info("repo removed from new image-info, retiring all of its digests", "repo", oldRepo.Name)
			run.retireRepo(&oldRepo)
			continue
		}

		for i := range oldRepo.Images {
			run.reconcileImage(oldRepo.Name, &oldRepo.Images[i], newRepo)
		}
	}

	batch := domain.NewEolBatch(eolDate, run.retired.Values())
	summary := run.tally.summary()

	s.log.Info("EOL data generated", "digests", len(batch.EolDigests), "eolDate", eolDate.String())
	return batch, summary, nil
}

// run holds the state of one Generate call.
type run struct {
	log     *log.Logger
	sel     *selector.Selector
	opts    domain.ReconcileOptions
	live    *domain.DigestSet
	retired *domain.DigestSet
	tally   *tally
}

func (r *run) scoped() bool {
	return r.opts.ActiveOnly || r.opts.Scope.RestrictsPlatforms()
}

func (r *run) platforms(image *domain.Image) iter.Seq[domain.Platform] {
	if r.opts.ActiveOnly {
		return r.sel.ActivePlatforms(image)
	}
	return r.sel.Platforms(image)
}

// publishedDigests collects every manifest and platform digest of info.
func publishedDigests(info *domain.Catalog) *domain.DigestSet {
	set := domain.NewDigestSet()
	for _, repo := range info.Repos {
		for i := range repo.Images {
			set.Add(repo.Images[i].ManifestDigest())
			for _, platform := range repo.Images[i].Platforms {
				set.Add(platform.Digest)
			}
		}
	}
	return set
}

// retire adds digest to the batch unless the new release still publishes it.
func (r *run) retire(repo string, image *domain.Image, digest, reason string) {
	if r.live.Contains(digest) {
		r.log.Debug("keeping digest still published in new image-info", "repo", repo, "productVersion", image.ProductVersion, "digest", digest, "reason", reason)
		return
	}
	if !r.retired.Add(digest) {
		return
	}
	r.tally.add(repo, image.ProductVersion)
	r.log.Debug("retiring digest", "repo", repo, "productVersion", image.ProductVersion, "digest", digest, "reason", reason)
}

func (r *run) retireRepo(repo *domain.Repo) {
	r.tally.markRemoved(repo.Name)
	for i := range repo.Images {
		image := &repo.Images[i]

		inScope := false
		for platform := range r.platforms(image) {
			inScope = true
			r.retire(repo.Name, image, platform.Digest, "repo removed")
		}

		if !inScope && r.scoped() {
			continue
		}
		r.retire(repo.Name, image, image.ManifestDigest(), "repo removed")
	}
}

func (r *run) reconcileImage(repoName string, oldImage *domain.Image, newRepo *domain.Repo) {
	successor := successorLookup{old: oldImage, newRepo: newRepo}

	inScope := false
	for oldPlatform := range r.platforms(oldImage) {
		inScope = true

		newImage := successor.get()
		if newImage == nil {
			r.retire(repoName, oldImage, oldPlatform.Digest, "no successor image")
			continue
		}

		newPlatform, ok := newImage.Platform(oldPlatform.Dockerfile)
		switch {
		case !ok:
			r.retire(repoName, oldImage, oldPlatform.Digest, "platform removed")
		case newPlatform.Digest != oldPlatform.Digest:
			r.retire(repoName, oldImage, oldPlatform.Digest, "platform digest changed")
		}
	}

	if !inScope && r.scoped() {
		return
	}

	oldManifest := oldImage.ManifestDigest()
	if oldManifest == "" {
		return
	}

	newImage := successor.get()
	switch {
	case newImage == nil:
		r.retire(repoName, oldImage, oldManifest, "no successor image")
	case newImage.ManifestDigest() == "":
		r.retire(repoName, oldImage, oldManifest, "successor has no manifest")
	case newImage.ManifestDigest() != oldManifest:
		r.retire(repoName, oldImage, oldManifest, "manifest digest changed")
	}
}

// successorLookup resolves the new-release image that continues old, once.
// Candidates must build at least one of old's Dockerfiles; among them the
// successor is the one with the same identity key.
type successorLookup struct {
	old      *domain.Image
	newRepo  *domain.Repo
	resolved bool
	image    *domain.Image
}

func (l *successorLookup) get() *domain.Image {
	if l.resolved {
		return l.image
	}
	l.resolved = true

	paths := l.old.Dockerfiles()
	key := l.old.IdentityKey()
	for i := range l.newRepo.Images {
		candidate := &l.newRepo.Images[i]
		if !candidate.HasAnyDockerfile(paths) {
			continue
		}
		if candidate.IdentityKey() == key {
			l.image = candidate
			break
		}
	}

	return l.image
}
