// Package registry implements C8: tagging, pushing, listing, and
// pruning images against the local Docker daemon and a remote
// registry.
package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"manifestctl/internal/humanize"
	"manifestctl/pkg/apperrors"
)

// TagResult records the outcome of applying one additional tag.
type TagResult struct {
	Tag string
	Err error
}

// ApplyTags tags imageID with each of tags in order, validating the
// grammar up front. A failure on one tag does not stop the rest: the
// caller gets a structured partial-failure report.
func ApplyTags(ctx context.Context, cli *client.Client, imageID string, tags []string) []TagResult {
	results := make([]TagResult, 0, len(tags))
	for _, tag := range tags {
		if err := ValidateTag(tag); err != nil {
			results = append(results, TagResult{Tag: tag, Err: err})
			continue
		}
		if err := cli.ImageTag(ctx, imageID, tag); err != nil {
			results = append(results, TagResult{Tag: tag, Err: &apperrors.TagError{Tag: tag, Err: err}})
			continue
		}
		results = append(results, TagResult{Tag: tag})
	}
	return results
}

// PushOptions configures a single Push call.
type PushOptions struct {
	DryRun     bool
	OnProgress func(tag string, status string, current, total int64)
}

// jsonMessage mirrors the subset of the push stream this package cares
// about; shared shape with the builder's build-response stream.
type jsonMessage struct {
	Status         string `json:"status"`
	ID             string `json:"id"`
	Error          string `json:"error"`
	ErrorDetail    *struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
	ProgressDetail *struct {
		Current int64 `json:"current"`
		Total   int64 `json:"total"`
	} `json:"progressDetail"`
}

// Push streams tag to its registry. With DryRun set, it validates the
// tag and auth lookup but performs no network push.
func Push(ctx context.Context, cli *client.Client, tag string, opts PushOptions) error {
	if err := ValidateTag(tag); err != nil {
		return err
	}
	host := RegistryHost(tag)
	auth, err := AuthFromEnv(host)
	if err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}

	encoded, err := encodeAuth(auth)
	if err != nil {
		return &apperrors.AuthenticationError{Registry: host, Message: err.Error()}
	}

	body, err := cli.ImagePush(ctx, tag, types.ImagePushOptions{RegistryAuth: encoded})
	if err != nil {
		return &apperrors.PushError{Tag: tag, Err: err}
	}
	defer body.Close()

	dec := json.NewDecoder(body)
	for {
		var msg jsonMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			break
		}
		if msg.Error != "" {
			message := msg.Error
			if msg.ErrorDetail != nil && msg.ErrorDetail.Message != "" {
				message = msg.ErrorDetail.Message
			}
			if strings.Contains(strings.ToLower(message), "unauthorized") || strings.Contains(strings.ToLower(message), "authentication") {
				return &apperrors.AuthenticationError{Registry: host, Message: message}
			}
			return &apperrors.PushError{Tag: tag, Err: fmt.Errorf("%s", message)}
		}
		if opts.OnProgress != nil && msg.Status != "" {
			var cur, total int64
			if msg.ProgressDetail != nil {
				cur, total = msg.ProgressDetail.Current, msg.ProgressDetail.Total
			}
			opts.OnProgress(tag, msg.Status, cur, total)
		}
	}
	return nil
}

// RegistryHost extracts the registry host portion of a reference, or
// "docker.io" when the reference names no explicit registry.
func RegistryHost(ref string) string {
	name, _ := splitRef(ref)
	first := name
	if idx := strings.Index(name, "/"); idx >= 0 {
		first = name[:idx]
	}
	if strings.ContainsAny(first, ".:") || first == "localhost" {
		return first
	}
	return "docker.io"
}

// AuthFromEnv reads registry credentials from per-host environment
// variables: REGISTRY_AUTH_<HOST>_USERNAME/PASSWORD, falling back to
// REGISTRY_AUTH_USERNAME/PASSWORD for docker.io.
func AuthFromEnv(host string) (types.AuthConfig, error) {
	key := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_", ":", "_").Replace(host))
	user := os.Getenv("REGISTRY_AUTH_" + key + "_USERNAME")
	pass := os.Getenv("REGISTRY_AUTH_" + key + "_PASSWORD")
	if user == "" && host == "docker.io" {
		user = os.Getenv("REGISTRY_AUTH_USERNAME")
		pass = os.Getenv("REGISTRY_AUTH_PASSWORD")
	}
	if user == "" {
		return types.AuthConfig{}, &apperrors.AuthenticationError{Registry: host, Message: "no credentials found in environment"}
	}
	return types.AuthConfig{Username: user, Password: pass, ServerAddress: host}, nil
}

func encodeAuth(auth types.AuthConfig) (string, error) {
	buf, err := json.Marshal(auth)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// Summary is one locally-known image, projected for listing/pruning.
type Summary struct {
	ID      string
	Tags    []string
	Size    int64
	Created int64
}

// List returns locally known images with at least one tag that has the
// given prefix (empty prefix returns all), newest first.
func List(ctx context.Context, cli *client.Client, prefix string) ([]Summary, error) {
	images, err := cli.ImageList(ctx, types.ImageListOptions{})
	if err != nil {
		return nil, apperrors.NewDaemonError(err)
	}

	out := make([]Summary, 0, len(images))
	for _, img := range images {
		if prefix != "" && !hasTagPrefix(img.RepoTags, prefix) {
			continue
		}
		out = append(out, Summary{ID: img.ID, Tags: img.RepoTags, Size: img.Size, Created: img.Created})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	return out, nil
}

func hasTagPrefix(tags []string, prefix string) bool {
	for _, t := range tags {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

// PruneResult reports what a Prune call removed and kept.
type PruneResult struct {
	Removed                []Summary
	Kept                   []Summary
	SpaceReclaimed         int64
	SpaceReclaimedFormatted string
}

// Prune removes images beyond keepCount within each repository-name
// group (newest kept first), optionally restricted to images with at
// least one tag that has prefix. keepCount == 0 removes every matching image;
// only a negative keepCount is rejected.
func Prune(ctx context.Context, cli *client.Client, keepCount int, prefix string) (PruneResult, error) {
	if keepCount < 0 {
		return PruneResult{}, &apperrors.ConfigurationError{Path: "keepCount", Message: "must be >= 0"}
	}

	images, err := List(ctx, cli, prefix)
	if err != nil {
		return PruneResult{}, err
	}

	byName := map[string][]Summary{}
	var order []string
	for _, img := range images {
		name := "none"
		if len(img.Tags) > 0 {
			name, _ = splitRef(img.Tags[0])
		}
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], img)
	}

	var result PruneResult
	for _, name := range order {
		group := byName[name]
		sort.Slice(group, func(i, j int) bool { return group[i].Created > group[j].Created })
		if len(group) <= keepCount {
			result.Kept = append(result.Kept, group...)
			continue
		}
		result.Kept = append(result.Kept, group[:keepCount]...)
		for _, img := range group[keepCount:] {
			if _, err := cli.ImageRemove(ctx, img.ID, types.ImageRemoveOptions{Force: false}); err != nil {
				result.Kept = append(result.Kept, img)
				continue
			}
			result.Removed = append(result.Removed, img)
			result.SpaceReclaimed += img.Size
		}
	}
	result.SpaceReclaimedFormatted = humanize.Bytes(result.SpaceReclaimed)
	return result, nil
}

// FilterArgs is a small convenience re-export so callers building
// custom image-list filters don't need a second docker import.
func FilterArgs() filters.Args { return filters.NewArgs() }
