package storage

// Router picks a blob store per upload. The policy is size-based only: with an
// overflow tier configured, files larger than the threshold go there and
// everything else goes to the primary backend. It also resolves stores by
// backend tag for download-time dispatch.
type Router struct {
	primary   BlobStore
	overflow  BlobStore
	threshold int64
	byTag     map[string]BlobStore
}

// NewRouter builds a single-backend router; overflow may be nil.
func NewRouter(primary, overflow BlobStore, threshold int64) *Router {
	byTag := map[string]BlobStore{primary.Backend(): primary}
	if overflow != nil {
		byTag[overflow.Backend()] = overflow
	}
	return &Router{
		primary:   primary,
		overflow:  overflow,
		threshold: threshold,
		byTag:     byTag,
	}
}

// Register makes an extra store available for resolve-time dispatch without
// routing new uploads to it (e.g. records left over from an earlier
// deployment's backend).
func (r *Router) Register(s BlobStore) {
	r.byTag[s.Backend()] = s
}

func (r *Router) Select(size int64) BlobStore {
	if r.overflow != nil && r.threshold > 0 && size > r.threshold {
		return r.overflow
	}
	return r.primary
}

func (r *Router) ByBackend(tag string) (BlobStore, bool) {
	s, ok := r.byTag[tag]
	return s, ok
}
