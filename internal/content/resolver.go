// Package content classifies creator-supplied content references into
// canonical descriptors the delivery layer can act on.
package content

import (
	"path"
	"regexp"
	"strings"
)

// Kind tags what a content reference points at.
type Kind string

// Recognized content kinds.
const (
	KindIPFS          Kind = "ipfs"
	KindDirectMedia   Kind = "direct-media"
	KindVideoPlatform Kind = "video-platform"
	KindUnknown       Kind = "unknown"
)

// Descriptor is the canonical classification of one content reference.
type Descriptor struct {
	Kind       Kind   `json:"kind"`
	Locator    string `json:"locator"`
	PlatformID string `json:"platformId,omitempty"`
}

// DefaultGateway is used when no IPFS gateway is configured.
const DefaultGateway = "https://ipfs.io/ipfs/"

// mediaExtensions are file extensions served as direct media.
var mediaExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".ogv":  true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".mov":  true,
	".m3u8": true,
}

var (
	// YouTube watch/short/embed URL forms, capturing the 11-char video id.
	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
	}

	// Bare content-address forms: CIDv0 (Qm + 44 base58 chars) and the
	// common CIDv1 prefixes.
	cidV0Pattern = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)
	cidV1Prefix  = regexp.MustCompile(`^baf[a-z2-7]{4,}$`)

	// Bare 11-char platform video id.
	bareVideoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// Resolver classifies references, rewriting IPFS content through a gateway.
type Resolver struct {
	gateway string
	rules   []rule
}

// rule is one ordered classification step. The first rule to match wins.
type rule struct {
	name  string
	apply func(ref string) (Descriptor, bool)
}

// NewResolver creates a resolver using the given IPFS gateway URL prefix.
// An empty gateway falls back to DefaultGateway.
func NewResolver(gateway string) *Resolver {
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}

	r := &Resolver{gateway: gateway}
	// Order matters! Each rule assumes everything before it did not match;
	// reordering is a behavior change, not a cleanup.
	r.rules = []rule{
		{"ipfs-scheme", r.ipfsScheme},
		{"ipfs-path", r.ipfsPath},
		{"media-extension", r.mediaExtension},
		{"video-platform-url", r.videoPlatformURL},
		{"generic-http", r.genericHTTP},
		{"bare-cid", r.bareCID},
		{"bare-video-id", r.bareVideoID},
	}
	return r
}

// Classify maps a raw reference to its descriptor. It is pure and total:
// unrecognizable input degrades to KindUnknown rather than failing, so a bad
// reference can never block the payment path.
func (r *Resolver) Classify(ref string) Descriptor {
	ref = strings.TrimSpace(ref)
	for _, rule := range r.rules {
		if d, ok := rule.apply(ref); ok {
			return d
		}
	}
	return Descriptor{Kind: KindUnknown, Locator: ref}
}

// ipfs:// scheme: strip the scheme and rewrite through the gateway.
func (r *Resolver) ipfsScheme(ref string) (Descriptor, bool) {
	if !strings.HasPrefix(ref, "ipfs://") {
		return Descriptor{}, false
	}
	cid := strings.TrimPrefix(ref, "ipfs://")
	return Descriptor{Kind: KindIPFS, Locator: r.gateway + cid}, true
}

// A URL already routed through some gateway: use as-is.
func (r *Resolver) ipfsPath(ref string) (Descriptor, bool) {
	if !strings.Contains(ref, "/ipfs/") {
		return Descriptor{}, false
	}
	return Descriptor{Kind: KindIPFS, Locator: ref}, true
}

func (r *Resolver) mediaExtension(ref string) (Descriptor, bool) {
	if !isHTTP(ref) {
		return Descriptor{}, false
	}
	trimmed := ref
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if !mediaExtensions[strings.ToLower(path.Ext(trimmed))] {
		return Descriptor{}, false
	}
	return Descriptor{Kind: KindDirectMedia, Locator: ref}, true
}

func (r *Resolver) videoPlatformURL(ref string) (Descriptor, bool) {
	if !isHTTP(ref) {
		return Descriptor{}, false
	}
	for _, p := range youtubePatterns {
		if m := p.FindStringSubmatch(ref); m != nil {
			return Descriptor{Kind: KindVideoPlatform, Locator: ref, PlatformID: m[1]}, true
		}
	}
	return Descriptor{}, false
}

// Any other http(s) URL is treated as directly fetchable media.
func (r *Resolver) genericHTTP(ref string) (Descriptor, bool) {
	if !isHTTP(ref) {
		return Descriptor{}, false
	}
	return Descriptor{Kind: KindDirectMedia, Locator: ref}, true
}

func (r *Resolver) bareCID(ref string) (Descriptor, bool) {
	if !cidV0Pattern.MatchString(ref) && !cidV1Prefix.MatchString(ref) {
		return Descriptor{}, false
	}
	return Descriptor{Kind: KindIPFS, Locator: r.gateway + ref}, true
}

func (r *Resolver) bareVideoID(ref string) (Descriptor, bool) {
	if !bareVideoIDPattern.MatchString(ref) {
		return Descriptor{}, false
	}
	return Descriptor{
		Kind:       KindVideoPlatform,
		Locator:    "https://www.youtube.com/watch?v=" + ref,
		PlatformID: ref,
	}, true
}

func isHTTP(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
