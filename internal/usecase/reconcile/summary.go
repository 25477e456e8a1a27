package reconcile

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/bnema/eolkeeper/internal/domain"
)

type repoTally struct {
	removed  bool
	digests  int
	versions map[string]int
}

type tally struct {
	order []string
	repos map[string]*repoTally
}

func newTally() *tally {
	return &tally{repos: make(map[string]*repoTally)}
}

func (t *tally) repo(name string) *repoTally {
	rt, ok := t.repos[name]
	if !ok {
		rt = &repoTally{versions: make(map[string]int)}
		t.repos[name] = rt
		t.order = append(t.order, name)
	}
	return rt
}

func (t *tally) markRemoved(name string) {
	t.repo(name).removed = true
}

func (t *tally) add(repo, productVersion string) {
	rt := t.repo(repo)
	rt.digests++
	rt.versions[productVersion]++
}

func (t *tally) summary() domain.ReconcileSummary {
	var summary domain.ReconcileSummary
	for _, name := range t.order {
		rt := t.repos[name]
		if rt.digests == 0 && !rt.removed {
			continue
		}

		versions := make([]string, 0, len(rt.versions))
		for v := range rt.versions {
			versions = append(versions, v)
		}
		sortProductVersions(versions)

		entry := domain.RepoRetirement{Repo: name, Removed: rt.removed, Digests: rt.digests}
		for _, v := range versions {
			entry.Versions = append(entry.Versions, domain.VersionRetirement{ProductVersion: v, Digests: rt.versions[v]})
		}

		summary.Repos = append(summary.Repos, entry)
		summary.Total += rt.digests
	}
	return summary
}

// sortProductVersions orders semantic versions numerically, followed by
// anything that does not parse, lexically.
func sortProductVersions(versions []string) {
	parsed := make(map[string]*semver.Version, len(versions))
	for _, v := range versions {
		if sv, err := semver.NewVersion(v); err == nil {
			parsed[v] = sv
		}
	}

	sort.SliceStable(versions, func(i, j int) bool {
		a, aok := parsed[versions[i]]
		b, bok := parsed[versions[j]]
		switch {
		case aok && bok:
			if a.Equal(b) {
				return versions[i] < versions[j]
			}
			return a.LessThan(b)
		case aok != bok:
			return aok
		default:
			return versions[i] < versions[j]
		}
	})
}
