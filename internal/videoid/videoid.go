// Package videoid derives stable identities for downloaded media: canonical
// source domains, normalized source URLs and deterministic record UUIDs.
package videoid

import (
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Host aliases that are the same source site from a user's point of view.
var canonicalDomainByHost = map[string]string{
	"youtube.com":       "youtube.com",
	"www.youtube.com":   "youtube.com",
	"m.youtube.com":     "youtube.com",
	"music.youtube.com": "youtube.com",
	"youtu.be":          "youtube.com",

	"x.com":              "x.com",
	"www.x.com":          "x.com",
	"twitter.com":        "x.com",
	"www.twitter.com":    "x.com",
	"mobile.twitter.com": "x.com",

	"twitch.tv":     "twitch.tv",
	"www.twitch.tv": "twitch.tv",
	"m.twitch.tv":   "twitch.tv",

	"kick.com":     "kick.com",
	"www.kick.com": "kick.com",

	"soundcloud.com":     "soundcloud.com",
	"m.soundcloud.com":   "soundcloud.com",
	"www.soundcloud.com": "soundcloud.com",

	"vimeo.com":        "vimeo.com",
	"www.vimeo.com":    "vimeo.com",
	"player.vimeo.com": "vimeo.com",
}

// yt-dlp extractor keys (lowercased, suffix-stripped) mapped to domains.
var domainByExtractor = map[string]string{
	"youtube":    "youtube.com",
	"twitter":    "x.com",
	"twitch":     "twitch.tv",
	"kick":       "kick.com",
	"soundcloud": "soundcloud.com",
	"vimeo":      "vimeo.com",
	"bandcamp":   "bandcamp.com",
}

// ResolveCanonicalDomain returns the canonical domain for host (no port).
func ResolveCanonicalDomain(host string) string {
	h := normalizeHost(host)
	if c, ok := canonicalDomainByHost[h]; ok {
		return c
	}
	return h
}

// ExtractorDomain maps a yt-dlp extractor key such as "Youtube" or
// "TwitchVod" to a canonical domain. Unknown keys map to their lowercase form.
func ExtractorDomain(extractorKey string) string {
	k := strings.ToLower(strings.TrimSpace(extractorKey))
	if k == "" {
		return ""
	}
	if d, ok := domainByExtractor[k]; ok {
		return d
	}
	for prefix, d := range domainByExtractor {
		if strings.HasPrefix(k, prefix) {
			return d
		}
	}
	return k
}

// NamespaceUUIDForDomain returns the UUIDv5 namespace of a domain.
func NamespaceUUIDForDomain(domain string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(cleanDomain(domain)))
}

// VideoUUID returns a deterministic UUIDv5 for a (domain, videoID) pair. The
// name is just the video ID; the domain is scoped by the namespace.
func VideoUUID(domain string, videoID string) uuid.UUID {
	return uuid.NewSHA1(NamespaceUUIDForDomain(domain), []byte(strings.TrimSpace(videoID)))
}

// RecordID identifies a download by where it came from. The page URL's host
// wins; the extractor key is the fallback for pages without a usable URL.
func RecordID(extractorKey, webpageURL, videoID string) uuid.UUID {
	domain := ""
	if u, err := url.Parse(strings.TrimSpace(webpageURL)); err == nil && u.Host != "" {
		domain = ResolveCanonicalDomain(u.Host)
	}
	if domain == "" {
		domain = ExtractorDomain(extractorKey)
	}
	return VideoUUID(domain, videoID)
}

// NormalizeSourceURL returns a stable form of a user-supplied URL for
// de-duplication, and its canonical domain. The host is canonicalized and
// fragments and userinfo are dropped. YouTube watch URLs keep only v=; Twitch,
// X and Kick lose their query entirely; other hosts keep their query.
func NormalizeSourceURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", errors.New("missing url")
	}

	u, err := url.Parse(raw)
	if err == nil && u.Scheme == "" {
		u, err = url.Parse("https://" + raw)
	}
	if err != nil {
		return "", "", err
	}

	u.Fragment = ""
	u.User = nil

	canon := ResolveCanonicalDomain(u.Host)

	// Shortlinks carry the ID in the path, so read it before rewriting.
	youtubeID := ""
	if canon == "youtube.com" {
		youtubeID, _ = ExtractYouTubeVideoID(u.String())
	}

	if canon != "" {
		u.Host = canon
	}
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	switch canon {
	case "youtube.com":
		if youtubeID != "" {
			u.Path = "/watch"
			u.RawQuery = "v=" + url.QueryEscape(youtubeID)
		}
	case "twitch.tv", "x.com", "kick.com":
		u.RawQuery = ""
	}

	return u.String(), canon, nil
}

// ExtractYouTubeVideoID extracts the video ID from watch, shortlink, embed,
// shorts and live URLs.
func ExtractYouTubeVideoID(urlStr string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return "", err
	}

	host := normalizeHost(u.Host)
	if host == "youtu.be" {
		if id := firstPathSegment(u.Path); id != "" {
			return id, nil
		}
		return "", errors.New("not a youtube url or video id not found")
	}

	if ResolveCanonicalDomain(host) != "youtube.com" {
		return "", errors.New("not a youtube url or video id not found")
	}

	if v := strings.TrimSpace(u.Query().Get("v")); v != "" {
		return v, nil
	}
	for _, prefix := range []string{"/embed/", "/v/", "/shorts/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			if id := firstPathSegment(strings.TrimPrefix(u.Path, prefix)); id != "" {
				return id, nil
			}
		}
	}
	return "", errors.New("not a youtube url or video id not found")
}

func cleanDomain(domain string) string {
	return strings.TrimSuffix(strings.TrimSpace(strings.ToLower(domain)), ".")
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil && parsed.Hostname() != "" {
			h = parsed.Hostname()
		}
	}
	return strings.TrimSuffix(h, ".")
}

func firstPathSegment(p string) string {
	p = strings.TrimPrefix(strings.TrimSpace(p), "/")
	seg, _, _ := strings.Cut(p, "/")
	return strings.TrimSpace(seg)
}
