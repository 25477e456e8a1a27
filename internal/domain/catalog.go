package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog is a point-in-time image-info snapshot of a release.
type Catalog struct {
	Repos []Repo `json:"repos" yaml:"repos"`
}

// Repo is a repository and the images published to it.
type Repo struct {
	Name   string  `json:"repo" yaml:"repo"`
	Images []Image `json:"images" yaml:"images"`
}

// Image is a logical image, usually a multi-platform manifest list.
type Image struct {
	ProductVersion string        `json:"productVersion,omitempty" yaml:"productVersion,omitempty"`
	Manifest       *ManifestData `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Platforms      []Platform    `json:"platforms" yaml:"platforms"`
}

// ManifestData describes the multi-platform manifest of an image.
type ManifestData struct {
	Digest     string   `json:"digest" yaml:"digest"`
	SharedTags []string `json:"sharedTags,omitempty" yaml:"sharedTags,omitempty"`
}

// Platform is one built Dockerfile of an image.
type Platform struct {
	Dockerfile   string `json:"dockerfile" yaml:"dockerfile"`
	Digest       string `json:"digest" yaml:"digest"`
	OSType       string `json:"osType,omitempty" yaml:"osType,omitempty"`
	Architecture string `json:"architecture,omitempty" yaml:"architecture,omitempty"`
}

// Repo returns the repo with the given name.
func (c *Catalog) Repo(name string) (*Repo, bool) {
	for i := range c.Repos {
		if c.Repos[i].Name == name {
			return &c.Repos[i], true
		}
	}
	return nil, false
}

// Validate reports structural problems that make the snapshot untrustworthy.
func (c *Catalog) Validate() error {
	for ri, repo := range c.Repos {
		if strings.TrimSpace(repo.Name) == "" {
			return fmt.Errorf("%w: repo %d has no name", ErrMalformedCatalog, ri)
		}
		for ii, image := range repo.Images {
			for pi, platform := range image.Platforms {
				if platform.Digest == "" {
					return fmt.Errorf("%w: repo %q image %d platform %d has no digest", ErrMalformedCatalog, repo.Name, ii, pi)
				}
			}
		}
	}
	return nil
}

// ManifestDigest returns the manifest digest or "" when the image has none.
func (i *Image) ManifestDigest() string {
	if i.Manifest == nil {
		return ""
	}
	return i.Manifest.Digest
}

// IdentityKey correlates an image across releases: the product version
// followed by the sorted shared tags.
func (i *Image) IdentityKey() string {
	if i.Manifest == nil || len(i.Manifest.SharedTags) == 0 {
		return i.ProductVersion
	}

	tags := slices.Clone(i.Manifest.SharedTags)
	slices.Sort(tags)
	return i.ProductVersion + " " + strings.Join(tags, " ")
}

// Platform returns the platform built from dockerfile.
func (i *Image) Platform(dockerfile string) (*Platform, bool) {
	for p := range i.Platforms {
		if i.Platforms[p].Dockerfile == dockerfile {
			return &i.Platforms[p], true
		}
	}
	return nil, false
}

// HasAnyDockerfile reports whether the image builds any of the given paths.
func (i *Image) HasAnyDockerfile(paths map[string]struct{}) bool {
	for _, platform := range i.Platforms {
		if _, ok := paths[platform.Dockerfile]; ok {
			return true
		}
	}
	return false
}

// Dockerfiles returns the set of Dockerfile paths of the image.
func (i *Image) Dockerfiles() map[string]struct{} {
	paths := make(map[string]struct{}, len(i.Platforms))
	for _, platform := range i.Platforms {
		paths[platform.Dockerfile] = struct{}{}
	}
	return paths
}
