// Package artifact resolves a named artifact coordinate to a local file.
//
// The harness never reimplements full repository metadata resolution; a
// coordinate maps deterministically to one filename
// (name-version[-classifier].zip) which is looked up in a single configured
// repository. Four repository schemes are supported:
//
//   - file://  a local directory, returned in place without copying
//   - http(s):// fetched with a GET into the download cache
//   - s3://    fetched from a bucket via the minio client
//   - dav(s):// fetched from a WebDAV share
//
// Remote fetches land in ~/.cache/nxharness/artifacts (configurable) behind a
// singleflight group, so concurrent resolutions of the same bundle download
// once. When digest verification is enabled and the repository publishes a
// digest sidecar (<filename>.sha256 and friends), the downloaded file must
// match; the digest algorithm is inferred from the hex digest length.
//
// Every failure surfaces as a *ResolutionError naming the coordinate and the
// repository that was asked.
package artifact
