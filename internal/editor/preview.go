package editor

// PreviewHandle stands in for the transient local rendering pointer a
// queued image holds before upload. It must be released on every path
// that retires the owning item: explicit delete, session reset, and
// replacement by the persisted upload. Release is idempotent.
type PreviewHandle struct {
	url      string
	release  func(url string)
	released bool
}

func newPreviewHandle(localID string, release func(string)) *PreviewHandle {
	return &PreviewHandle{
		url:     "preview://" + localID,
		release: release,
	}
}

func (h *PreviewHandle) URL() string {
	if h == nil || h.released {
		return ""
	}
	return h.url
}

func (h *PreviewHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	if h.release != nil {
		h.release(h.url)
	}
}

func (h *PreviewHandle) Released() bool {
	return h == nil || h.released
}
